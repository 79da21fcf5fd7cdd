package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "anggaran/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.7" })

	var seenID string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/budget", nil))
	if !strings.HasPrefix(seenID, "req_") {
		t.Errorf("request id = %q", seenID)
	}
	if rec.Header().Get(HeaderRequestID) != seenID {
		t.Errorf("response header %q, want %q", rec.Header().Get(HeaderRequestID), seenID)
	}
	if !strings.Contains(buf.String(), "status_code=200") || !strings.Contains(buf.String(), "client_ip=10.0.0.7") {
		t.Errorf("unexpected log: %s", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderRequestID, "from-proxy")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seenID != "from-proxy" {
		t.Errorf("incoming id not kept: %q", seenID)
	}

	got := m.GetMetrics()
	if got.TotalRequests != 2 || got.FailedRequests != 1 {
		t.Errorf("metrics = %+v", got)
	}
}
