package dataset

import (
	"fmt"
	"strings"
)

// Table is an in-memory tabular dataset. Cells are kept as the raw strings read from
// the source so that writing a table back out reproduces it verbatim.
type Table struct {
	Columns []string
	Rows    [][]string
}

// missingTokens are cell values treated as absent, matched after trimming spaces
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// IsMissing reports whether a raw cell value denotes a missing observation.
func IsMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// NewTable builds a table and checks that it is well formed.
func NewTable(columns []string, rows [][]string) (*Table, error) {
	t := &Table{Columns: columns, Rows: rows}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks for a non-empty, unique header and rectangular rows.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(t.Columns))
		}
	}
	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table declares name
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the values of one column.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, &MissingColumnError{Column: name}
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Subset returns the rows at the given positions, in that order.
func (t *Table) Subset(rows []int) *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = append([]string(nil), t.Rows[r]...)
	}
	return out
}

// Select returns a table restricted to cols, in the given order.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, &MissingColumnError{Column: c}
		}
	}
	out := &Table{
		Columns: append([]string(nil), cols...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for r, row := range t.Rows {
		selected := make([]string, len(idx))
		for i, j := range idx {
			selected[i] = row[j]
		}
		out.Rows[r] = selected
	}
	return out, nil
}

// Drop returns a table without col.
func (t *Table) Drop(col string) (*Table, error) {
	if !t.HasColumn(col) {
		return nil, &MissingColumnError{Column: col}
	}
	keep := make([]string, 0, len(t.Columns)-1)
	for _, c := range t.Columns {
		if c != col {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// MissingColumnError reports a column absent from a table
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}
