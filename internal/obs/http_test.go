package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestRequestContextMiddleware_RequestIDSources(t *testing.T) {
	var seen Correlation
	h := RequestContextMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationFromContext(r.Context())
	}))

	// Incoming header wins.
	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.Header.Set("X-Request-Id", "client-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen.RequestID != "client-id" || rec.Header().Get("X-Request-Id") != "client-id" {
		t.Fatalf("incoming request id not propagated: ctx=%q header=%q", seen.RequestID, rec.Header().Get("X-Request-Id"))
	}

	// Then the traceparent trace id.
	req = httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen.RequestID != "4bf92f3577b34da6a3ce929d0e0e4736" || seen.TraceID != seen.RequestID {
		t.Fatalf("trace id not used as request id: %+v", seen)
	}

	// Otherwise a fresh id.
	req = httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !strings.HasPrefix(seen.RequestID, "req-") || rec.Header().Get("X-Request-Id") != seen.RequestID {
		t.Fatalf("expected generated request id, got %+v", seen)
	}
}

func testExtractTraceID_Properties(t *rapid.T) {
	traceID := rapid.StringMatching(`[0-9a-f]{32}`).Draw(t, "trace_id")
	spanID := rapid.StringMatching(`[0-9a-f]{16}`).Draw(t, "span_id")
	got := extractTraceID("00-" + traceID + "-" + spanID + "-01")
	if traceID == strings.Repeat("0", 32) {
		if got != "" {
			t.Fatalf("all-zero trace id accepted")
		}
		return
	}
	if got != traceID {
		t.Fatalf("extractTraceID = %q, want %q", got, traceID)
	}

	garbage := rapid.StringMatching(`[g-z-]{0,40}`).Draw(t, "garbage")
	if extractTraceID(garbage) != "" {
		t.Fatalf("garbage %q produced a trace id", garbage)
	}
}

func TestExtractTraceID_Properties(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testExtractTraceID_Properties)
}

func TestRecoverMiddleware_PanicBecomes500(t *testing.T) {
	var logs bytes.Buffer
	restore := SetOutputForTests(&logs)
	defer restore()

	h := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v (%s)", err, rec.Body.String())
	}
	if body["error"]["message"] != "internal error" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "panic_recovered") || strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("panic not logged or leaked: logs=%s body=%s", logs.String(), rec.Body.String())
	}
}

func TestAccessLogMiddleware_LogsStatusAndRedactsHeaders(t *testing.T) {
	var logs bytes.Buffer
	restore := SetOutputForTests(&logs)
	defer restore()

	h := RequestContextMiddleware(AccessLogMiddleware("api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	})))
	req := httptest.NewRequest(http.MethodPost, "/api/folders", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Request-Id", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var event map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var m map[string]any
		if json.Unmarshal([]byte(line), &m) == nil && m["msg"] == "http_access" {
			event = m
		}
	}
	if event == nil {
		t.Fatalf("no http_access event in logs: %s", logs.String())
	}
	if event["status"] != float64(http.StatusCreated) || event["resp_bytes"] != float64(8) {
		t.Fatalf("unexpected access event: %v", event)
	}
	if event["request_id"] != "abc" || event["pkg"] != "api" {
		t.Fatalf("correlation missing: %v", event)
	}
	if strings.Contains(logs.String(), "secret-token") {
		t.Fatalf("authorization header leaked into logs")
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()
	called := false
	h := CORSMiddleware("*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	pre := httptest.NewRequest(http.MethodOptions, "/api/notes", nil)
	pre.Header.Set("Access-Control-Request-Method", "PATCH")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, pre)
	if rec.Code != http.StatusNoContent || called {
		t.Fatalf("preflight should short-circuit with 204, got %d called=%v", rec.Code, called)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("PATCH not allowed: %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if !called || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("simple request not passed through with CORS header")
	}

	if CORSMiddleware("", http.NotFoundHandler()) == nil {
		t.Fatal("empty origin should return next")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]string{"debug": "DEBUG", "WARN": "WARN", "warning": "WARN", "error": "ERROR", "": "INFO", "bogus": "INFO"}
	for in, want := range cases {
		if got := ParseLevel(in).String(); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
