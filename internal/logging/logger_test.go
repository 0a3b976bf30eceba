package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultWriter(t *testing.T) {
	require.NotNil(t, New(nil, "info"))
}

func TestSubTagsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug").Sub("webhook").Info().Str("session", "visitor-1").Msg("webhook sent")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "webhook", line["subsystem"])
	assert.Equal(t, "visitor-1", line["session"])
	assert.Equal(t, "webhook sent", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.NotEmpty(t, line["time"])
}

func TestSubChainKeepsInnermost(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug").Sub("kiosk").Sub("tools").Info().Msg("tool called")
	assert.Contains(t, buf.String(), `"subsystem":"tools"`)
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"warn", []string{"warn", "error"}, []string{"debug", "info"}},
		{"debug", []string{"debug", "info", "warn", "error"}, nil},
		{"silent", nil, []string{"debug", "info", "warn", "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.level)
			log.Debug().Msg("msg-debug")
			log.Info().Msg("msg-info")
			log.Warn().Msg("msg-warn")
			log.Error().Msg("msg-error")
			out := buf.String()
			for _, v := range tt.visible {
				assert.Contains(t, out, "msg-"+v)
			}
			for _, h := range tt.hidden {
				assert.NotContains(t, out, "msg-"+h)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"WARN", zerolog.WarnLevel},
		{" debug ", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewWithFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, closer, err := NewWithFile(dir, "info")
	require.NoError(t, err)
	log.Sub("kiosk").Info().Str("session", "abc").Msg("session started")
	log.Debug().Msg("filtered out")
	require.NoError(t, closer.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "app_"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"subsystem":"kiosk"`)
	assert.Contains(t, string(data), "session started")
	assert.NotContains(t, string(data), "filtered out")
}
