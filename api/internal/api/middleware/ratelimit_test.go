package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mis/api/internal/api/middleware"
)

func TestRateLimiter_PerClientBudget(t *testing.T) {
	limiter := middleware.NewRateLimiter(3, time.Hour)
	defer limiter.Stop()

	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit("10.0.0.1:5000"), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:5001"), "port changes must not reset the bucket")

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:5000"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	limiter := middleware.NewRateLimiter(0, 0)
	limiter.Stop()
	limiter.Stop()
}

func TestRateLimiter_RetryAfterFollowsRefillRate(t *testing.T) {
	cases := []struct {
		requests int
		window   time.Duration
		want     string
	}{
		{2, time.Minute, "30"},
		{3, time.Hour, "1200"},
		{100, 15 * time.Minute, "9"},
	}

	for _, tc := range cases {
		limiter := middleware.NewRateLimiter(tc.requests, tc.window)
		h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		var rec *httptest.ResponseRecorder
		for i := 0; i <= tc.requests; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.RemoteAddr = "10.0.0.9:4000"
			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, req)
		}
		limiter.Stop()

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, tc.want, rec.Header().Get("Retry-After"), "%d per %s", tc.requests, tc.window)
	}
}
