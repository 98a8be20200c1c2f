package table

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/enrolscan/internal/dataset"
)

// dateNameHints marks columns coerced to dates by name. Matching is by
// substring of the lowercased header, so txn_dt and last_update_time both
// qualify.
var dateNameHints = []string{"date", "time", "dt"}

// Load reads every CSV under dir into one table. Files that cannot be
// parsed, or that collapse to a single column under every known separator,
// are skipped with a warning; columns are merged by name across files in
// first-seen order, and rows from a file lacking a column carry missing
// cells there.
func Load(dir string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	files, err := dataset.Discover(dir)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	var sources []string
	skipped := 0
	for _, path := range files {
		header, records, err := readTableFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "file", path, "error", err)
			skipped++
			continue
		}
		if len(header) <= 1 {
			logger.Debug("skipping single-column file", "file", path)
			skipped++
			continue
		}

		src := len(sources)
		sources = append(sources, path)
		fileCols := make([]int, len(header))
		for i, name := range header {
			fileCols[i] = b.column(strings.TrimSpace(name))
		}
		for _, record := range records {
			b.addRow(src, fileCols, record)
		}
	}

	t := b.build()
	t.Sources = sources

	logger.Debug("table loaded",
		"dir", dir,
		"rows", t.Rows,
		"columns", len(t.Columns),
		"files", len(sources),
		"skipped_files", skipped)
	return t, nil
}

// readTableFile parses one CSV with a sniffed separator. Ragged records
// are tolerated; the header is returned separately from the data records.
func readTableFile(path string) ([]string, [][]string, error) {
	sep, err := dataset.DetectSeparator(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

// builder accumulates raw cells column by column while the union of
// headers is still growing.
type builder struct {
	names    []string
	index    map[string]int
	cells    [][]string
	rows     int
	sourceOf []int
}

func newBuilder() *builder {
	return &builder{index: make(map[string]int)}
}

// column returns the union index for name, registering it and backfilling
// missing cells for already-read rows on first sight.
func (b *builder) column(name string) int {
	if i, ok := b.index[name]; ok {
		return i
	}
	i := len(b.names)
	b.names = append(b.names, name)
	b.index[name] = i
	b.cells = append(b.cells, make([]string, b.rows))
	return i
}

func (b *builder) addRow(src int, fileCols []int, record []string) {
	for i := range b.cells {
		b.cells[i] = append(b.cells[i], "")
	}
	for j, ci := range fileCols {
		if j < len(record) {
			b.cells[ci][b.rows] = record[j]
		}
	}
	b.rows++
	b.sourceOf = append(b.sourceOf, src)
}

func (b *builder) build() *Table {
	t := &Table{Rows: b.rows, sourceOf: b.sourceOf}
	for i, name := range b.names {
		t.Columns = append(t.Columns, coerceColumn(name, b.cells[i]))
	}
	return t
}

// coerceColumn types a raw column. Date-named columns parse as dates with
// failures recorded as missing. Other columns become numeric when more
// than half of all rows survive a cleaning parse that strips currency
// marks, thousands separators, and percent signs; otherwise they stay
// text, with blank cells missing.
func coerceColumn(name string, cells []string) *Column {
	c := &Column{Name: name, Raw: cells, Missing: make([]bool, len(cells))}

	lower := strings.ToLower(name)
	for _, hint := range dateNameHints {
		if strings.Contains(lower, hint) {
			c.Kind = KindDate
			c.Dates = make([]dataset.Date, len(cells))
			for i, cell := range cells {
				day, err := dataset.ParseDate(cell)
				if err != nil {
					c.Missing[i] = true
					continue
				}
				c.Dates[i] = day
			}
			return c
		}
	}

	parsed := make([]float64, len(cells))
	ok := make([]bool, len(cells))
	successes := 0
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cleanNumeric(cell), 64)
		if err != nil {
			continue
		}
		parsed[i] = v
		ok[i] = true
		successes++
	}
	if successes*2 > len(cells) {
		c.Kind = KindNumeric
		c.Floats = parsed
		for i := range cells {
			c.Missing[i] = !ok[i]
		}
		return c
	}

	c.Kind = KindString
	for i, cell := range cells {
		c.Missing[i] = strings.TrimSpace(cell) == ""
	}
	return c
}

// cleanNumeric keeps only digits, dots, and minus signs so that values
// like "1,234", "86%", and "Rs 500" parse.
func cleanNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
