package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "json", &buf)

	l.Info().Msg("hidden")
	l.Warn().Str("team", "alpha").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "alpha", line["team"])
	assert.Equal(t, "shown", line["message"])
	assert.Contains(t, line, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "console", &buf)
	l.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "DBG")
}

func TestNew_LevelFallback(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" error ", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := New(tt.in, "json", &bytes.Buffer{})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}
