package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.Info("login attempt",
		"username", "alice",
		"password", "hunter22",
		"Authorization", "Bearer abc",
		slog.Group("req", slog.String("refresh_token", "r-123"), slog.String("path", "/login")),
	)

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "req.path")
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "Bearer abc")
	assert.NotContains(t, out, "r-123")
	assert.Contains(t, out, redacted)
}

func TestPrettyHandler_WithAttrsRedacts(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("cookie", "accessToken=xyz").WithGroup("auth")

	log.Info("request", "user_id", "u1")

	out := buf.String()
	assert.NotContains(t, out, "accessToken=xyz")
	assert.Contains(t, out, "auth.user_id")
}

func TestPrettyHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
