package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func TestTestLogger_Levels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ColumnKey, "age")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorSchema)

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsMessage("warning message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
	assert.True(t, testLogger.ContainsField(ErrorCodeKey, ErrorSchema))
	assert.Equal(t, 1, testLogger.CountLevel(LevelWarn))
}

func TestTestLogger_With(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "Pipeline",
		TargetKey, "efs",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "Pipeline"))
	assert.True(t, testLogger.ContainsField(TargetKey, "efs"))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationFit))
}

func TestTestLogger_Enabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("test-component").Info("named logger message")

	out := buffer.String()
	assert.Contains(t, out, "provider test message")
	assert.Contains(t, out, "named logger message")
	assert.Contains(t, out, "test-component")

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")
	assert.NotContains(t, buffer.String(), "suppressed")
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf)
	provider.SetLevel(LevelDebug)
	defer provider.SetLevel(LevelInfo)

	logger := provider.GetLoggerWithName("Pipeline")
	logger.Info("Fit completed", SamplesKey, 3, FeaturesKey, 2)
	logger.Error("Transform failed", errors.NewSchemaError("Pipeline.Transform", "test", "age", "column not found"))

	out := buf.String()
	assert.Contains(t, out, `"message":"Fit completed"`)
	assert.Contains(t, out, `"data.samples":3`)
	assert.Contains(t, out, `"ml.component":"Pipeline"`)
	assert.Contains(t, out, `"error":"tabprep: Pipeline.Transform: column 'age' in test table: column not found"`)
}

func TestZerologLogger_Enabled(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf)
	provider.SetLevel(LevelWarn)
	defer provider.SetLevel(LevelInfo)

	logger := provider.GetLogger()
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelError))

	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestWarnRoutedToZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nopWriter{})

	errors.Warn(errors.NewUnseenLevelWarning("team", []string{"C"}, 2))

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"type":"UnseenLevelWarning"`)
	assert.True(t, strings.Contains(out, `"levels":["C"]`))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
