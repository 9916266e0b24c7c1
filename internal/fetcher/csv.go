// Package fetcher reads the delimited input tables the pipeline consumes.
package fetcher

import (
	"encoding/csv"
	"io/fs"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound reports a missing input file, distinct from parse failures.
var ErrNotFound = eris.New("fetcher: file not found")

// ErrMissingColumns reports that a table lacks required named columns.
var ErrMissingColumns = eris.New("fetcher: missing required columns")

// Table is an ordered sequence of records with named fields.
type Table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// ReadTable parses the file at path using the given field delimiter.
// The first row is the header; a UTF-8 byte-order mark on the first
// header cell is stripped, and all cells are whitespace-trimmed.
func ReadTable(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if eris.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "fetcher: open %s", path)
		}
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("fetcher: %s has no header row", path)
	}

	headers := records[0]
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
		index[headers[i]] = i
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		for i, field := range rec {
			rec[i] = strings.TrimSpace(field)
		}
		rows = append(rows, rec)
	}

	return &Table{headers: headers, index: index, rows: rows}, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Field returns the named field of row i, or "" when the column is
// absent or the row is short.
func (t *Table) Field(i int, name string) string {
	col, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) || col >= len(t.rows[i]) {
		return ""
	}
	return t.rows[i][col]
}

// RequireColumns verifies the named columns exist in the header.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingColumns, "fetcher: columns %s (found: %s)",
			strings.Join(missing, ", "), strings.Join(t.headers, ", "))
	}
	return nil
}
