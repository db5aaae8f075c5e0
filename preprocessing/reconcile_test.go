package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		train    []string
		test     []string
		wantAdd  []string
		wantDrop []string
	}{
		{
			name:  "identical",
			train: []string{"a", "b_x"},
			test:  []string{"a", "b_x"},
		},
		{
			name:    "missing indicator",
			train:   []string{"age", "team_B", "team_C"},
			test:    []string{"age", "team_C"},
			wantAdd: []string{"team_B"},
		},
		{
			name:     "extra and reordered",
			train:    []string{"age", "team_B"},
			test:     []string{"team_C", "age", "team_B", "team_D"},
			wantDrop: []string{"team_C", "team_D"},
		},
		{
			name:     "disjoint",
			train:    []string{"x", "y"},
			test:     []string{"z"},
			wantAdd:  []string{"x", "y"},
			wantDrop: []string{"z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reconcile(tt.train, tt.test)
			assert.Equal(t, tt.wantAdd, r.Add)
			assert.Equal(t, tt.wantDrop, r.Drop)
			assert.Equal(t, tt.train, r.Order)
			assert.Equal(t, len(tt.wantAdd) == 0 && len(tt.wantDrop) == 0, r.Empty())
			assert.Equal(t, r, Reconcile(tt.train, tt.test))
		})
	}
}

func TestReconciliation_Apply(t *testing.T) {
	m := NewMatrix(2, []string{"team_C", "age", "team_D"})
	copy(m.RawRow(0), []float64{1, 0.5, 0})
	copy(m.RawRow(1), []float64{0, -0.5, 1})

	out := Reconcile([]string{"age", "team_B", "team_C"}, m.Names()).Apply(m)
	assert.Equal(t, []string{"age", "team_B", "team_C"}, out.Names())
	assert.Equal(t, []float64{0.5, 0, 1}, out.RawRow(0))
	assert.Equal(t, []float64{-0.5, 0, 0}, out.RawRow(1))
}

func TestSanitizeNames(t *testing.T) {
	assert.Equal(t, "team_A_M", SanitizeName("team_A&M"))
	assert.Equal(t, "caf__", SanitizeName("café!"))
	assert.Equal(t, "Pass_Yds_G", SanitizeName("Pass Yds/G"))

	got, err := SanitizeNames([]string{"a b", "c"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b", "c"}, got)

	_, err = SanitizeNames([]string{"a b", "a-b"}, true)
	var schema *errors.SchemaError
	require.True(t, errors.As(err, &schema))
	assert.Equal(t, "a-b", schema.Column)

	got, err = SanitizeNames([]string{"a b", "a-b"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "a-b"}, got)

	_, err = SanitizeNames([]string{"x", "x"}, false)
	assert.True(t, errors.As(err, &schema))
}
