package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Load reads every CSV under dir as the given kind. Malformed rows are
// skipped and tallied; structural problems (missing directory, missing
// columns, zero valid rows) return a *LoadError.
func Load(dir string, kind Kind, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	normalizer := NewNormalizer()
	ds := &Dataset{Kind: kind, Sources: files}

	for _, path := range files {
		rows, skipped, err := readFile(path, kind, normalizer, logger)
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, rows...)
		ds.Skipped += skipped
	}

	if len(ds.Rows) == 0 {
		return nil, &LoadError{Code: ErrCodeEmptyDataset, Path: dir, Message: fmt.Sprintf("no valid %s rows in %d file(s)", kind, len(files))}
	}

	logger.Debug("dataset loaded",
		"kind", string(kind),
		"rows", len(ds.Rows),
		"files", len(files),
		"skipped", ds.Skipped)
	return ds, nil
}

// readFile parses one extract file. The returned skip count covers rows
// dropped for bad dates, bad counts, or missing geography.
func readFile(path string, kind Kind, normalizer *Normalizer, logger *slog.Logger) ([]Row, int, error) {
	sep, err := DetectSeparator(path)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: fmt.Sprintf("detecting separator: %v", err), Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: fmt.Sprintf("opening file: %v", err), Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: fmt.Sprintf("reading header: %v", err), Err: err}
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[NormalizeHeader(h)] = i
	}

	under5Col, youthCol, adultCol := kind.bandColumns()
	required := []string{"date", "state", "district", "pincode", youthCol, adultCol}
	if under5Col != "" {
		required = append(required, under5Col)
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, 0, &LoadError{Code: ErrCodeMissingColumn, Path: path, Message: fmt.Sprintf("missing column %q", name)}
		}
	}

	var rows []Row
	skipped := 0
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, &LoadError{Code: ErrCodeReadFailed, Path: path, Message: fmt.Sprintf("reading records: %v", err), Err: err}
		}
		line++

		row, ok := parseRow(record, col, under5Col, youthCol, adultCol, normalizer)
		if !ok {
			skipped++
			logger.Debug("skipping malformed row", "file", path, "line", line)
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

func parseRow(record []string, col map[string]int, under5Col, youthCol, adultCol string, normalizer *Normalizer) (Row, bool) {
	field := func(name string) (string, bool) {
		i := col[name]
		if i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	rawDate, ok := field("date")
	if !ok {
		return Row{}, false
	}
	day, err := ParseDate(rawDate)
	if err != nil {
		return Row{}, false
	}

	rawState, _ := field("state")
	rawDistrict, _ := field("district")
	state := normalizer.Name(rawState)
	district := normalizer.Name(rawDistrict)
	if state == "" || district == "" {
		return Row{}, false
	}

	pincode, _ := field("pincode")

	row := Row{
		Day:      day,
		State:    state,
		District: district,
		Pincode:  strings.TrimSpace(pincode),
	}

	if under5Col != "" {
		raw, _ := field(under5Col)
		n, err := parseCount(raw)
		if err != nil {
			return Row{}, false
		}
		row.AgeUnder5 = n
	}

	rawYouth, _ := field(youthCol)
	youth, err := parseCount(rawYouth)
	if err != nil {
		return Row{}, false
	}
	row.AgeYouth = youth

	rawAdult, _ := field(adultCol)
	adult, err := parseCount(rawAdult)
	if err != nil {
		return Row{}, false
	}
	row.AgeAdult = adult

	return row, true
}

// parseCount reads a non-negative count cell. Blank cells mean zero, and
// thousands separators are stripped. Decimal forms like "12.0" appear in a
// few re-exported files and truncate to their integer part.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", "")

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int64(f), nil
}
