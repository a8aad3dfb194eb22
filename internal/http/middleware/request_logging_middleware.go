package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Layers that may turn a request away. Each one reports itself through
// MarkRejected.
const (
	RejectedByAuth      = "auth"
	RejectedByRole      = "role"
	RejectedByRateLimit = "rate_limit"
)

type rejectionKey struct{}

type rejection struct {
	layer string
}

// MarkRejected records the layer that refused the request, for the request
// log line. It is a no-op outside StructuredRequestLogger.
func MarkRejected(ctx context.Context, layer string) {
	if slot, ok := ctx.Value(rejectionKey{}).(*rejection); ok {
		slot.layer = layer
	}
}

// StructuredRequestLogger emits one "http.request" line per request. Requests
// a layer marked as rejected are logged at warn with a "rejected_by"
// attribute; server errors are logged at error.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		slot := &rejection{}

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), rejectionKey{}, slot)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r),
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"client_ip", r.RemoteAddr,
		}
		if slot.layer != "" {
			attrs = append(attrs, "rejected_by", slot.layer)
		}
		slog.Log(r.Context(), requestLogLevel(status, slot.layer), "http.request", attrs...)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

func requestLogLevel(status int, rejectedBy string) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case rejectedBy != "":
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
