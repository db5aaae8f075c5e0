package table

import (
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// DefaultNaNValues are the CSV cells read as missing.
var DefaultNaNValues = []string{"", "NA", "NaN", "nan", "<nil>"}

type readConfig struct {
	schema    *ColumnSchema
	nanValues []string
}

// ReadOption configures ReadCSV.
type ReadOption func(*readConfig)

// WithSchema parses the columns named in s with the declared kinds instead of
// detecting them. Use it to read a test file with the training schema so a
// column that happens to be empty or all-text in the test file keeps the
// training kind.
func WithSchema(s *ColumnSchema) ReadOption {
	return func(c *readConfig) {
		c.schema = s
	}
}

// WithNaNValues replaces DefaultNaNValues.
func WithNaNValues(values ...string) ReadOption {
	return func(c *readConfig) {
		c.nanValues = values
	}
}

// ReadCSV reads a CSV stream with a header row into a Table. Int and float
// columns become Numeric, everything else Categorical. Detected bool columns
// are read as "true"/"false" levels with a DataConversionWarning.
func ReadCSV(r io.Reader, opts ...ReadOption) (_ *Table, err error) {
	defer errors.Recover(&err, "table.ReadCSV")

	cfg := readConfig{nanValues: DefaultNaNValues}
	for _, opt := range opts {
		opt(&cfg)
	}

	loadOpts := []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(cfg.nanValues),
	}
	if cfg.schema != nil {
		types := make(map[string]series.Type, cfg.schema.Len())
		for _, f := range cfg.schema.fields {
			if f.Kind == Numeric {
				types[f.Name] = series.Float
			} else {
				types[f.Name] = series.String
			}
		}
		loadOpts = append(loadOpts, dataframe.WithTypes(types))
	}

	df := dataframe.ReadCSV(r, loadOpts...)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "table.ReadCSV")
	}
	return fromDataFrame(df)
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string, opts ...ReadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return t, nil
}

func fromDataFrame(df dataframe.DataFrame) (*Table, error) {
	names := df.Names()
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		s := df.Col(name)
		switch s.Type() {
		case series.Int, series.Float:
			cols = append(cols, NewNumeric(name, s.Float()))
		case series.Bool:
			errors.Warn(errors.NewDataConversionWarning(name, "bool", Categorical.String(), "boolean values are read as levels"))
			fallthrough
		default:
			levels := s.Records()
			for i, isNaN := range s.IsNaN() {
				if isNaN {
					levels[i] = MissingLevel
				}
			}
			cols = append(cols, NewCategorical(name, levels))
		}
	}
	t, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		t.rows = df.Nrow()
	}
	return t, nil
}
