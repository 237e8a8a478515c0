package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l, err := Setup(Config{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)
	assert.Same(t, l, L())

	l.Info("etl: dataset converted", "dataset", "EA")
	l.Warn("etl: dataset skipped", "dataset", "WNAI")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "info is below the configured level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "WNAI", rec["dataset"])
	assert.True(t, strings.HasSuffix(rec["time"].(string), "Z"), "timestamps are UTC")
}

func TestSetupDebugOverridesLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l, err := Setup(Config{Level: "error", Output: &buf, Debug: true})
	require.NoError(t, err)
	l.Debug("convert: rules resolved")
	assert.Contains(t, buf.String(), "convert: rules resolved")
	assert.Contains(t, buf.String(), "source=")
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	_, err := Setup(Config{Level: "chatty"})
	assert.Error(t, err)
	_, err = Setup(Config{Format: "xml"})
	assert.Error(t, err)
}
