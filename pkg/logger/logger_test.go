package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestNew_JSONInProd(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Env: "prod"}, &buf)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("binding conflict", "provider", "GitLab")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "binding conflict", entry["msg"])
	assert.Equal(t, "GitLab", entry["provider"])
}

func TestNew_TintInDev(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "debug", Env: "DEV"}, &buf)
	log.Debug("scopes cloned", "user_id", 7)

	out := buf.String()
	assert.Contains(t, out, "scopes cloned")
	assert.Contains(t, out, "user_id")
	assert.False(t, json.Valid(buf.Bytes()))
}
