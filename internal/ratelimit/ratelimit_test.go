package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddlewarePerClient(t *testing.T) {
	l := New(0.001, 2)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/gradescales/update", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	if do("10.0.0.1:5000") != 200 || do("10.0.0.1:5001") != 200 {
		t.Fatalf("burst should pass")
	}
	if code := do("10.0.0.1:5002"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: %d", code)
	}
	if code := do("10.0.0.2:5000"); code != 200 {
		t.Fatalf("other client throttled: %d", code)
	}
}

func TestSweepDropsIdle(t *testing.T) {
	l := New(1, 1)
	l.Allow("a")
	l.sweep(time.Now().Add(time.Hour))
	if len(l.visitors) != 0 {
		t.Fatalf("idle visitor kept")
	}
}
