package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/symfx/pkg/config"
)

// lines decodes every JSON line written to buf
func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"panic":   zerolog.PanicLevel,
		"verbose": zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), "level %q", input)
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	require.NotNil(t, New(&config.Config{Env: "staging", LogLevel: "warn", LogFormat: "console"}))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestNewWithWriter_TagsEnvAndComponent(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	log := NewWithWriter(&buf, "test").Component("feed")

	log.WithFields(map[string]interface{}{
		"quote_id": "D4F23E64",
		"attempt":  2,
	}).Warn("Reconnecting")
	log.WithError(errors.New("dial refused")).WithField("url", "ws://backend/ws/orders").Error("Dial failed")
	log.Debug("Ping sent")

	entries := lines(t, &buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "test", entries[0]["env"])
	assert.Equal(t, "feed", entries[0]["component"])
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "D4F23E64", entries[0]["quote_id"])
	assert.Equal(t, float64(2), entries[0]["attempt"])
	assert.Equal(t, "Reconnecting", entries[0]["message"])
	assert.Contains(t, entries[0], "time")

	assert.Equal(t, "dial refused", entries[1]["error"])
	assert.Equal(t, "ws://backend/ws/orders", entries[1]["url"])

	assert.Equal(t, "debug", entries[2]["level"])
}

func TestWithField_DoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(&buf, "test")

	parent.WithField("quote_id", "B1A23E54").Info("child")
	parent.Info("parent")

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "B1A23E54", entries[0]["quote_id"])
	assert.NotContains(t, entries[1], "quote_id")
}

func TestNop(t *testing.T) {
	log := Nop().Component("hub").WithField("client_id", "c1").WithError(errors.New("x"))

	assert.NotPanics(t, func() {
		log.Debug("d")
		log.Info("i")
		log.Warn("w")
		log.Error("e")
	})
}
