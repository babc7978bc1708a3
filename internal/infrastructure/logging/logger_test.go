package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: "info", want: zapcore.InfoLevel},
		{input: "WARN", want: zapcore.WarnLevel},
		{input: "error", want: zapcore.ErrorLevel},
		{input: "verbose", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := parseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Component("ranking").Info("Ranked catalog", zap.Int("results", 3))
	logger.Debug("Dropped below level")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"Ranked catalog"`)
	assert.Contains(t, out, `"logger":"catalogd.ranking"`)
	assert.Contains(t, out, `"results":3`)
	assert.NotContains(t, out, "Dropped below level")
}

func TestFallbackLoggers(t *testing.T) {
	assert.NotNil(t, NewDefault())
	assert.NotNil(t, NewDevelopment())
}

func TestForLevel(t *testing.T) {
	prod := ForLevel("warn", false)
	assert.Equal(t, "warn", prod.Level)
	assert.True(t, prod.Sampling)

	dev := ForLevel("warn", true)
	assert.Equal(t, "debug", dev.Level)
	assert.True(t, dev.Development)
	assert.False(t, dev.Sampling)
}
