// Package table provides the typed tabular data the preprocessing pipeline
// consumes: ordered named columns, each numeric or categorical, sharing one
// implicit row index.
//
// Missing values are NaN in numeric columns and the empty string in
// categorical columns. Tables are treated as immutable by the pipeline;
// every transforming call works on a Clone.
package table

import (
	"math"
)

// Kind is the declared type of a column.
type Kind int

const (
	// Numeric columns hold float64 values, NaN marks a missing value.
	Numeric Kind = iota
	// Categorical columns hold string levels, "" marks a missing value.
	Categorical
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// MissingLevel is the categorical missing marker.
const MissingLevel = ""

// Column is a single named column.
type Column struct {
	name string
	kind Kind
	nums []float64
	cats []string
}

// NewNumeric creates a numeric column. The slice is used as-is.
func NewNumeric(name string, values []float64) *Column {
	return &Column{name: name, kind: Numeric, nums: values}
}

// NewCategorical creates a categorical column. The slice is used as-is.
func NewCategorical(name string, values []string) *Column {
	return &Column{name: name, kind: Categorical, cats: values}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.cats)
}

// Floats returns the numeric values. Callers must not modify the slice.
// It is nil for categorical columns.
func (c *Column) Floats() []float64 { return c.nums }

// Strings returns the categorical levels. Callers must not modify the slice.
// It is nil for numeric columns.
func (c *Column) Strings() []string { return c.cats }

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.nums[i])
	}
	return c.cats[i] == MissingLevel
}

// MissingCount returns the number of missing rows.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// MissingRatio returns the fraction of missing rows, 0 for an empty column.
func (c *Column) MissingRatio() float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(c.Len())
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.nums != nil {
		out.nums = append([]float64(nil), c.nums...)
	}
	if c.cats != nil {
		out.cats = append([]string(nil), c.cats...)
	}
	return out
}
