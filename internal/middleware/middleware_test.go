package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		headerID string
		wantNew  bool
	}{
		{name: "valid", headerID: "abc-123_DEF.4"},
		{name: "max_length", headerID: strings.Repeat("a", 128)},
		{name: "too_long", headerID: strings.Repeat("a", 129), wantNew: true},
		{name: "newline", headerID: "id\nINJECTED: yes", wantNew: true},
		{name: "spaces", headerID: "id with spaces", wantNew: true},
		{name: "markup", headerID: "<script>", wantNew: true},
		{name: "missing", wantNew: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = RequestIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.headerID != "" {
				req.Header.Set("X-Request-ID", tt.headerID)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, captured)
			assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
			if tt.wantNew {
				assert.NotEqual(t, tt.headerID, captured)
				assert.Len(t, captured, 36, "replacement ids are UUIDs")
			} else {
				assert.Equal(t, tt.headerID, captured)
			}
		})
	}

	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := RequestID(AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/api/tables", line["path"])
	assert.InDelta(t, float64(http.StatusTeapot), line["status"], 0.001)
	assert.Equal(t, "req-1", line["request_id"])
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	handler := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}).Handler(okHandler())

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate limit exceeded", body["message"])
}

func TestRateLimiter_PerClientIsolation(t *testing.T) {
	handler := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}).Handler(okHandler())

	serve := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, serve("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, serve("10.0.0.1:5678"))
	assert.Equal(t, http.StatusOK, serve("10.0.0.2:1234"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 10, Burst: 10, IdleAfter: time.Minute})
	l.now = func() time.Time { return now }

	l.limiter("10.0.0.1")
	now = now.Add(30 * time.Second)
	l.limiter("10.0.0.2")
	assert.Equal(t, 2, l.Sweep())

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, l.Sweep(), "only the idle client is dropped")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:12345"
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	assert.Equal(t, "::1", clientIP(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", clientIP(req))
}
