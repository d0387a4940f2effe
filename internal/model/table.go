package model

import "time"

// Column is one aligned series of a table. Values holds exactly one entry
// per index position; NaN marks a missing cell.
type Column struct {
	Name   string
	Values []float64
}

// Table is a set of columns sharing one row index. Rows are the instants of
// the reference clock the columns were aligned to. Tables are built once and
// never mutated afterwards.
type Table struct {
	Index   []time.Time
	Columns []Column
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int {
	return len(t.Index)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return len(t.Index) == 0 || len(t.Columns) == 0
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}
