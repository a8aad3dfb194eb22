package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
)

// EnsureMinimumDuration blocks until floor has elapsed since start, or ctx is
// done. It returns the time spent waiting.
func EnsureMinimumDuration(ctx context.Context, start time.Time, floor time.Duration) time.Duration {
	remaining := floor - time.Since(start)
	if remaining <= 0 {
		return 0
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return remaining
}

// ConstantTime holds every non-preflight response until floor has elapsed
// since the request arrived. The wrapped handler writes into a buffer, so
// nothing reaches the client early, and a panic becomes a padded 500.
func ConstantTime(floor time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			buf := &bufferedResponse{header: w.Header()}
			panicked := serveRecovering(next, buf, r)

			padding := EnsureMinimumDuration(r.Context(), start, floor)
			observability.RecordResponsePadding(r.Context(), routeLabel(r), padding)

			if panicked {
				response.Error(w, r, http.StatusInternalServerError, "An unexpected error occurred")
				return
			}
			buf.flushTo(w)
		})
	}
}

func serveRecovering(next http.Handler, w *bufferedResponse, r *http.Request) (panicked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "handler panic", "panic", rec, "path", r.URL.Path)
			panicked = true
		}
	}()
	next.ServeHTTP(w, r)
	return false
}

func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if b.body.Len() > 0 {
		_, _ = w.Write(b.body.Bytes())
	}
}
