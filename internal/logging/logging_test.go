package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(" INFO "))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("Error"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("loud"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatConsole, ParseFormat("pretty"))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Sugared("info", FormatJSON, &buf).Named(ComponentCache)
	log.Debugw("hidden")
	log.Infow("evicted", "key", "k1")
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "debug is below the level")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "cache", rec["component"])
	assert.Equal(t, "evicted", rec["msg"])
	assert.Equal(t, "k1", rec["key"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", FormatConsole, &buf)
	log.Warn("careful")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), " | WARN | ")
	assert.Contains(t, buf.String(), "careful")
}
