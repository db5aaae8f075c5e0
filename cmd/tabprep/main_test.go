package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
)

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })
	dir := t.TempDir()
	train := writeCSV(t, dir, "train.csv", `game_id,age,team,points
1,10,A,11
2,20,B,19
3,,A,16
4,30,B,32
5,25,A,26
`)
	test := writeCSV(t, dir, "test.csv", `game_id,age,team,points
6,15,C,14
7,,A,20
`)

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-train", train, "-test", test,
		"-target", "points", "-keep", "game_id",
		"-model", "ridge", "-alpha", "0.5",
		"-log-level", "error",
	}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "train: 5 rows x 2 columns")
	assert.Contains(t, out, "test: 2 rows x 2 columns")
	assert.Contains(t, out, "unseen levels in team: C")
	assert.Contains(t, out, "== train ==")
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "R-squared:")
}

func TestRun_TestWithoutTarget(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })
	dir := t.TempDir()
	train := writeCSV(t, dir, "train.csv", "x,y\n1,2\n2,4\n3,6\n")
	test := writeCSV(t, dir, "test.csv", "x\n4\n5\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-train", train, "-test", test, "-target", "y", "-log-level", "error"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "test predictions: 2 (no target column)")
	assert.NotContains(t, stdout.String(), "== test ==")
}

func TestRun_Errors(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })
	dir := t.TempDir()
	train := writeCSV(t, dir, "train.csv", "x,y\n1,2\n2,4\n3,6\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing train", []string{"-target", "y"}},
		{"missing target flag", []string{"-train", train}},
		{"unknown model", []string{"-train", train, "-target", "y", "-model", "forest"}},
		{"bad log level", []string{"-train", train, "-target", "y", "-log-level", "loud"}},
		{"absent target column", []string{"-train", train, "-target", "z"}},
		{"unreadable file", []string{"-train", filepath.Join(dir, "nope.csv"), "-target", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(tt.args, &stdout, &stderr))
		})
	}

	t.Run("absent target is typed", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run([]string{"-train", train, "-target", "z"}, &stdout, &stderr)
		var missing *errors.MissingTargetColumnError
		assert.True(t, errors.As(err, &missing))
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not fitted", errors.NewNotFittedError("Pipeline", "Transform"), log.ErrorNotFitted},
		{"empty", errors.NewEmptyInputError("Pipeline.Fit", "train"), log.ErrorEmptyData},
		{"missing target", errors.NewMissingTargetColumnError("Pipeline.Fit", "y"), log.ErrorSchema},
		{"mismatch", errors.NewSchemaMismatchError("Pipeline.Transform", []string{"x"}), log.ErrorSchema},
		{"other", errors.NewValueError("tabprep", "bad"), log.ErrorInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(errors.Wrap(tt.err, "context")))
		})
	}
}

func TestRun_LogLevelAppliesToSlog(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })
	dir := t.TempDir()
	train := writeCSV(t, dir, "train.csv", "x,y\n1,2\n2,4\n3,7\n")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-train", train, "-target", "y", "-log-level", "warn"}, &stdout, &stderr))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))

	slog.Error("tabprep failed", log.ErrAttr(errors.New("boom")))
	assert.Contains(t, stderr.String(), `"severity":"ERROR"`)
	assert.NotContains(t, stdout.String(), "severity")

	stdout.Reset()
	require.NoError(t, run([]string{"-train", train, "-target", "y", "-log-level", "debug"}, &stdout, &stderr))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
