// internal/common/tabular/csv.go
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a CSV file held in memory: a header row and string records.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadFile reads a CSV with a header row. A leading UTF-8 BOM is dropped.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Source = path
	return t, nil
}

func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Col returns the index of the named column, or -1.
func (t *Table) Col(name string) int {
	if name == "" {
		return -1
	}
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Lookup returns the index of the first of names present in the header, or -1.
func (t *Table) Lookup(names ...string) int {
	for _, n := range names {
		if i := t.Col(n); i >= 0 {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at col in row, or "" when out of range.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// IsMissing reports whether a cell is empty or a common NA marker.
func IsMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "nan", "null", "none":
		return true
	}
	return false
}
