package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testFloor = 200 * time.Millisecond

func timed(h http.Handler, req *http.Request) (*httptest.ResponseRecorder, time.Duration) {
	rr := httptest.NewRecorder()
	start := time.Now()
	h.ServeHTTP(rr, req)
	return rr, time.Since(start)
}

func TestConstantTimePadsSuccessAndErrorPaths(t *testing.T) {
	cases := []struct {
		name   string
		status int
	}{
		{"success", http.StatusOK},
		{"unauthorized", http.StatusUnauthorized},
		{"rate limited", http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := ConstantTime(testFloor)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("X-Test", "1")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{}`))
			}))
			rr, elapsed := timed(h, httptest.NewRequest(http.MethodPost, "/", nil))
			if elapsed < testFloor {
				t.Fatalf("expected at least %v, took %v", testFloor, elapsed)
			}
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if rr.Header().Get("X-Test") != "1" || rr.Body.String() != `{}` {
				t.Fatalf("expected buffered headers and body to be flushed, got %q", rr.Body.String())
			}
		})
	}
}

func TestConstantTimeDoesNotPadSlowHandlersFurther(t *testing.T) {
	h := ConstantTime(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(80 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	_, elapsed := timed(h, httptest.NewRequest(http.MethodPost, "/", nil))
	if elapsed < 80*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Fatalf("unexpected elapsed %v", elapsed)
	}
}

func TestConstantTimeRecoversPanicAsPadded500(t *testing.T) {
	h := ConstantTime(testFloor)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr, elapsed := timed(h, httptest.NewRequest(http.MethodPost, "/", nil))
	if elapsed < testFloor {
		t.Fatalf("expected at least %v, took %v", testFloor, elapsed)
	}
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "An unexpected error occurred" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestConstantTimeSkipsPreflight(t *testing.T) {
	h := ConstantTime(testFloor)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	_, elapsed := timed(h, httptest.NewRequest(http.MethodOptions, "/", nil))
	if elapsed >= testFloor {
		t.Fatalf("expected preflight to skip padding, took %v", elapsed)
	}
}

func TestEnsureMinimumDurationReturnsEarlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	EnsureMinimumDuration(ctx, start, time.Second)
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("expected cancelled context to stop waiting")
	}
	if waited := EnsureMinimumDuration(context.Background(), start.Add(-time.Second), testFloor); waited != 0 {
		t.Fatalf("expected no wait when floor already elapsed, got %v", waited)
	}
}
