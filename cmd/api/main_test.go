package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/hrmslite/hrmslite/internal/config"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"mongodb://admin:s3cret@db:27017/hrms", "mongodb://admin@db:27017/hrms"},
		{"postgres://hr:pw@localhost:5432/hrms?sslmode=disable", "postgres://hr@localhost:5432/hrms?sslmode=disable"},
		{"redis://:token@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	secret := "mongodb://admin:s3cret@db:27017"
	err := errors.New("dial " + secret + " failed; password=hunter2")

	got := sanitizeError(err, secret, "")
	if strings.Contains(got, "s3cret") || strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.Contains(got, "mongodb://admin@db:27017") {
		t.Errorf("redacted URL missing: %q", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{StoreDriver: "sqlite"})
	if err == nil || !strings.Contains(err.Error(), "sqlite") {
		t.Errorf("err = %v, want unknown driver", err)
	}
}
