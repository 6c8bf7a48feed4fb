package local

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Table is a column-oriented frame of float64 values. Tables are immutable:
// every engine operation builds a new one.
type Table struct {
	id      uuid.UUID
	columns []string
	data    [][]float64 // column-major, data[col][row]
	rows    int
}

// NewTable builds a table from column names and column-major data. All
// columns must have the same length.
func NewTable(columns []string, data [][]float64) (*Table, error) {
	if len(columns) != len(data) {
		return nil, errors.Errorf("got %d column names for %d columns", len(columns), len(data))
	}

	rows := 0
	if len(data) > 0 {
		rows = len(data[0])
	}

	for i, col := range data {
		if len(col) != rows {
			return nil, errors.Errorf("column %s has %d rows, want %d", columns[i], len(col), rows)
		}
	}

	return &Table{
		id:      uuid.New(),
		columns: append([]string(nil), columns...),
		data:    data,
		rows:    rows,
	}, nil
}

// ID returns the table's unique handle id.
func (t *Table) ID() uuid.UUID {
	return t.id
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.rows
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]float64, error) {
	for i, col := range t.columns {
		if col == name {
			return append([]float64(nil), t.data[i]...), nil
		}
	}

	return nil, errors.Errorf("table has no column %s", name)
}

// At returns the value at the given column and row.
func (t *Table) At(col, row int) float64 {
	return t.data[col][row]
}
