package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/xrope/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  log.Level
		known bool
	}{
		{"debug", log.DebugLevel, true},
		{"DEBUG", log.DebugLevel, true},
		{"info", log.InfoLevel, true},
		{"", log.InfoLevel, true},
		{"warn", log.WarnLevel, true},
		{"warning", log.WarnLevel, true},
		{" error ", log.ErrorLevel, true},
		{"verbose", log.InfoLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := logging.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "warn")
	require.NotNil(t, logger)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", logging.FieldLen, 23)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "len=23")
}

func TestDefaultAndSetLevel(t *testing.T) {
	// Not parallel: modifies the process-wide logger.
	original := logging.Default()
	defer logging.SetDefault(original)

	l := logging.New("info")
	logging.SetDefault(l)
	assert.Same(t, l, logging.Default())

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())
	logging.SetLevel("error")
	assert.Equal(t, log.ErrorLevel, logging.Default().GetLevel())
}

func TestContext(t *testing.T) {
	l := logging.New("error")
	ctx := logging.WithLogger(context.Background(), l)
	assert.Same(t, l, logging.FromContext(ctx))
	assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
}
