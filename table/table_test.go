package table_test

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
	"github.com/YuminosukeSato/tabprep/table"
)

func TestNew_RejectsRaggedColumns(t *testing.T) {
	_, err := table.New(
		table.NewNumeric("a", []float64{1, 2, 3}),
		table.NewCategorical("b", []string{"x", "y"}),
	)

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := table.New(
		table.NewNumeric("a", []float64{1}),
		table.NewNumeric("a", []float64{2}),
	)

	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "a", schemaErr.Column)
}

func TestColumn_Missing(t *testing.T) {
	num := table.NewNumeric("age", []float64{10, math.NaN(), 30, math.NaN()})
	cat := table.NewCategorical("team", []string{"A", "", "B", "C"})

	assert.Equal(t, 2, num.MissingCount())
	assert.InDelta(t, 0.5, num.MissingRatio(), 1e-12)
	assert.True(t, num.IsMissing(1))
	assert.False(t, num.IsMissing(0))

	assert.Equal(t, 1, cat.MissingCount())
	assert.True(t, cat.IsMissing(1))
	assert.Equal(t, 0.0, table.NewNumeric("empty", nil).MissingRatio())
}

func TestClone_IsDeep(t *testing.T) {
	values := []float64{1, 2, 3}
	orig := table.MustNew(table.NewNumeric("a", values))

	clone := orig.Clone()
	col, _ := clone.Column("a")
	col.Floats()[0] = 100

	assert.Equal(t, 1.0, values[0], "clone must not share storage with the original")
}

func TestSelectAndDrop(t *testing.T) {
	tbl := table.MustNew(
		table.NewNumeric("a", []float64{1, 2}),
		table.NewCategorical("b", []string{"x", "y"}),
		table.NewNumeric("c", []float64{3, 4}),
	)

	sel, err := tbl.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Names())

	_, err = tbl.Select("missing")
	assert.Error(t, err)

	dropped, absent := tbl.Drop("b", "zzz")
	assert.Equal(t, []string{"a", "c"}, dropped.Names())
	assert.Equal(t, []string{"zzz"}, absent)
	assert.Equal(t, 2, dropped.NumRows())

	// original untouched
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Names())
}

func TestSchema(t *testing.T) {
	tbl := table.MustNew(
		table.NewNumeric("a", []float64{1}),
		table.NewCategorical("b", []string{"x"}),
	)

	s := tbl.Schema()
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Names())

	f, ok := s.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, table.Categorical, f.Kind)
	assert.False(t, s.Has("c"))

	_, err := table.NewSchema(table.Field{Name: "x"}, table.Field{Name: "x"})
	assert.Error(t, err)
}

func TestReadCSV_DetectsKinds(t *testing.T) {
	input := strings.Join([]string{
		"age,team,score",
		"10,A,1.5",
		",B,2.5",
		"30,NA,3",
	}, "\n")

	tbl, err := table.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"age", "team", "score"}, tbl.Names())

	age, _ := tbl.Column("age")
	assert.Equal(t, table.Numeric, age.Kind())
	assert.Equal(t, 10.0, age.Floats()[0])
	assert.True(t, age.IsMissing(1))

	team, _ := tbl.Column("team")
	assert.Equal(t, table.Categorical, team.Kind())
	assert.Equal(t, []string{"A", "B", ""}, team.Strings())

	score, _ := tbl.Column("score")
	assert.Equal(t, table.Numeric, score.Kind())
}

func TestReadCSV_WithSchema(t *testing.T) {
	train := table.MustNew(
		table.NewNumeric("age", []float64{1}),
		table.NewCategorical("zip", []string{"01234"}),
	)

	// without a schema "zip" would be detected as an integer column
	input := "age,zip\n,02139\n5,10001\n"
	tbl, err := table.ReadCSV(strings.NewReader(input), table.WithSchema(train.Schema()))
	require.NoError(t, err)

	age, _ := tbl.Column("age")
	assert.Equal(t, table.Numeric, age.Kind())
	assert.True(t, age.IsMissing(0))

	zip, _ := tbl.Column("zip")
	assert.Equal(t, table.Categorical, zip.Kind())
	assert.Equal(t, []string{"02139", "10001"}, zip.Strings())
}

func TestReadCSV_BoolColumnWarns(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelWarn)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr))

	tbl, err := table.ReadCSV(strings.NewReader("home,points\ntrue,10\nfalse,14\n"))
	require.NoError(t, err)

	home, _ := tbl.Column("home")
	assert.Equal(t, table.Categorical, home.Kind())
	assert.Equal(t, []string{"true", "false"}, home.Strings())

	captured := provider.Logger()
	assert.True(t, captured.ContainsMessage("column 'home' converted from bool to categorical"))
}
