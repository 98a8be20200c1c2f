package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar day with no time zone. Extract rows carry dates only,
// and keeping the type free of time.Location removes a whole class of
// nondeterminism from joins and report output.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses the day-first forms the extracts use: dd-mm-yyyy,
// dd/mm/yyyy, and their two-digit-year variants. Two-digit years map to
// 2000+yy; the program predates none of its own extracts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if len(strings.TrimSpace(parts[2])) <= 2 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	// Reject day overflow (31-02-2025 and friends) by round-tripping.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// String renders ISO form, which is also the sort order used everywhere.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns the day at UTC midnight.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (earlier when n is negative).
func (d Date) AddDays(n int) Date {
	t := d.Time().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Compare orders dates chronologically, returning -1, 0, or 1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// Quarter returns the calendar quarter, 1 through 4.
func (d Date) Quarter() int {
	return (int(d.Month)-1)/3 + 1
}

// Weekday returns the day of the week with Monday as 0 and Sunday as 6.
func (d Date) Weekday() int {
	return (int(d.Time().Weekday()) + 6) % 7
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
