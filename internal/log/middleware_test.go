package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Level:     slog.LevelDebug,
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger := newBufferLogger(&bytes.Buffer{}, ComponentHTTP)

	var got *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != logger {
		t.Errorf("FromContext returned %v, want the injected logger", got)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("expected a fallback logger")
	}
	if logger.Component() != ComponentApp {
		t.Errorf("fallback component = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		statusCode int
		wantLevel  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))

		req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
		sl.LogHTTPEnd(req.Context(), req, "req-1", tt.statusCode, 12, "10.0.0.1")

		out := buf.String()
		if !strings.Contains(out, "level="+tt.wantLevel) {
			t.Errorf("status %d: level missing from %q, want %s", tt.statusCode, out, tt.wantLevel)
		}
		if !strings.Contains(out, FieldStatusCode+"="+strconv.Itoa(tt.statusCode)) {
			t.Errorf("status %d: status_code missing from %q", tt.statusCode, out)
		}
		if !strings.Contains(out, FieldRequestID+"=req-1") {
			t.Errorf("status %d: request id missing from %q", tt.statusCode, out)
		}
	}
}

func TestLogHTTPStartRecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))

	req := httptest.NewRequest(http.MethodPost, "/api/partners?x=1", nil)
	sl.LogHTTPStart(req.Context(), req, "req-2", "10.0.0.2")

	out := buf.String()
	for _, want := range []string{
		FieldMethod + "=POST",
		FieldPath + "=/api/partners",
		FieldClientIP + "=10.0.0.2",
		FieldComponent + "=" + ComponentHTTP,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}
