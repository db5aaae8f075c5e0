package table

import (
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// Field describes one column of a schema.
type Field struct {
	Name string
	Kind Kind
}

// ColumnSchema is an immutable ordered list of column descriptors. It is
// detected once when a table is loaded and carried through the pipeline
// instead of re-inferring kinds at every step.
type ColumnSchema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema. Duplicate names are a SchemaError.
func NewSchema(fields ...Field) (*ColumnSchema, error) {
	s := &ColumnSchema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			return nil, errors.NewSchemaError("NewSchema", "", f.Name, "duplicate column name")
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// Len returns the number of fields.
func (s *ColumnSchema) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in order.
func (s *ColumnSchema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the column names in order.
func (s *ColumnSchema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup returns the field with the given name.
func (s *ColumnSchema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether the schema contains name.
func (s *ColumnSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}
