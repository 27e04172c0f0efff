package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoginAttributesAreRedacted(t *testing.T) {
	tests := []struct {
		format   string
		username string
		hidden   []string
	}{
		{"text", "username=jdoe", []string{"hunter2", "eyJhbGciOi.payload.sig"}},
		{"json", `"username":"jdoe"`, []string{"hunter2", "eyJhbGciOi.payload.sig"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(slog.LevelInfo, tt.format, &buf).With("component", "apiclient")

			logger.Info("logged in", "username", "jdoe", "role", "student",
				"password", "hunter2", "token", "eyJhbGciOi.payload.sig")

			out := buf.String()
			if !strings.Contains(out, tt.username) {
				t.Errorf("username missing from %s output: %s", tt.format, out)
			}
			for _, s := range tt.hidden {
				if strings.Contains(out, s) {
					t.Errorf("%q leaked into %s output: %s", s, tt.format, out)
				}
			}
			if !strings.Contains(out, "[redacted]") {
				t.Errorf("expected redaction marker in %s output: %s", tt.format, out)
			}
		})
	}
}

func TestRedactionIgnoresKeyCase(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelDebug, "text", &buf)

	logger.Debug("HTTP request", "method", "GET", "Authorization", "Bearer abc", "TOKEN", "abc")

	out := buf.String()
	if strings.Contains(out, "abc") {
		t.Errorf("bearer token leaked: %s", out)
	}
	if !strings.Contains(out, "method=GET") {
		t.Errorf("expected method in output, got: %s", out)
	}
}

func TestRequestLogFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelDebug, "json", &buf)
	req := logger.With("component", "apiclient", "method", "GET", "path", "/student/marks.php", "request_id", "req-1")

	req.Debug("HTTP response", "status", 200, "bytes", 512)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log record: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"msg":        "HTTP response",
		"component":  "apiclient",
		"method":     "GET",
		"path":       "/student/marks.php",
		"request_id": "req-1",
		"status":     float64(200),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestWarnLevelHidesRequestLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(ParseLevel("warn"), "text", &buf)

	logger.Debug("HTTP request", "path", "/auth/verify.php")
	logger.Info("logged out")
	logger.Warn("session expired", "op", "GET /student/fees.php")

	out := buf.String()
	if strings.Contains(out, "HTTP request") || strings.Contains(out, "logged out") {
		t.Errorf("debug and info records should be dropped at warn, got: %s", out)
	}
	if !strings.Contains(out, "session expired") {
		t.Errorf("expected the expiry warning, got: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"Error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return the given logger")
	}
}
