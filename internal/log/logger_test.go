package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentLedger, Output: &buf})

	logger.InfoContext(context.Background(), "Transaction added", FieldAmount, 65000)
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "amount=65000") {
		t.Errorf("unexpected log line: %s", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentAMQP).Warn("circuit open")
	if !strings.Contains(buf.String(), "component=amqp") {
		t.Errorf("expected amqp component, got: %s", buf.String())
	}

	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != ComponentApp {
		t.Errorf("default component = %q", got.Component())
	}

	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Output: &buf})

	var seen *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = FromContext(r.Context())
			seen.LogError(r.Context(), "boom", errors.New("disk full"), OpCreate, nil)
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == nil || seen.Component() != ComponentHTTP {
		t.Fatalf("logger not propagated: %+v", seen)
	}
	out := buf.String()
	for _, want := range []string{"request_id=req-1", `error="disk full"`, "operation=create"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}
