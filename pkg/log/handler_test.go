package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func TestErrFmtHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))).
		With(TableKey, "test")

	t.Run("error with stack", func(t *testing.T) {
		buf.Reset()
		logger.Error("transform failed", ErrAttr(errors.NewEmptyInputError("Pipeline.Fit", "train")))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "test", entry[TableKey])
		assert.NotEmpty(t, entry[StacktraceAttrKey])
	})

	t.Run("no error attribute", func(t *testing.T) {
		buf.Reset()
		logger.Info("loaded", SamplesKey, 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.NotContains(t, entry, StacktraceAttrKey)
	})
}
