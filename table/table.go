package table

import (
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Table is an ordered collection of equally long named columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns. Columns must have the same length and
// unique names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{
		cols:  make([]*Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, errors.NewDimensionError("table.New("+c.Name()+")", t.rows, c.Len(), 0)
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, errors.NewSchemaError("table.New", "", c.Name(), "duplicate column name")
		}
		t.index[c.Name()] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Columns returns the columns in order. The slice is a copy, the columns are shared.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether the table contains name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Schema returns the table's column schema.
func (t *Table) Schema() *ColumnSchema {
	fields := make([]Field, len(t.cols))
	for i, c := range t.cols {
		fields[i] = Field{Name: c.Name(), Kind: c.Kind()}
	}
	// names are unique by construction
	s, _ := NewSchema(fields...)
	return s
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.cols)),
		rows:  t.rows,
	}
	for i, c := range t.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name()] = i
	}
	return out
}

// Select returns a table holding the named columns in the given order.
// The columns are shared with t.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, errors.NewSchemaError("Table.Select", "", name, "column not found")
		}
		cols = append(cols, c)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out, nil
}

// Drop returns a table without the named columns, plus the names that were
// not present. The remaining columns are shared with t.
func (t *Table) Drop(names ...string) (*Table, []string) {
	drop := make(map[string]struct{}, len(names))
	var absent []string
	for _, name := range names {
		if !t.Has(name) {
			absent = append(absent, name)
			continue
		}
		drop[name] = struct{}{}
	}

	out := &Table{
		cols:  make([]*Column, 0, len(t.cols)),
		index: make(map[string]int, len(t.cols)),
		rows:  t.rows,
	}
	for _, c := range t.cols {
		if _, ok := drop[c.Name()]; ok {
			continue
		}
		out.index[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, absent
}
