package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/security"
	"github.com/hashebooks/hashebooks-backend/internal/service"
	servicegomock "github.com/hashebooks/hashebooks-backend/internal/service/gomock"
)

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func captureDefaultLogger(t *testing.T) *captureHandler {
	t.Helper()
	orig := slog.Default()
	c := &captureHandler{}
	slog.SetDefault(slog.New(c))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return c
}

func TestStructuredRequestLoggerLevelsAndRejectionLayer(t *testing.T) {
	cases := []struct {
		status     int
		mark       string
		level      slog.Level
		rejectedBy string
	}{
		{http.StatusOK, "", slog.LevelInfo, ""},
		{http.StatusBadRequest, "", slog.LevelInfo, ""},
		{http.StatusUnauthorized, RejectedByAuth, slog.LevelWarn, "auth"},
		{http.StatusForbidden, RejectedByRole, slog.LevelWarn, "role"},
		{http.StatusTooManyRequests, RejectedByRateLimit, slog.LevelWarn, "rate_limit"},
		// A handler-level 401 or 403 (step-up failure, protected account)
		// is not a layer rejection.
		{http.StatusUnauthorized, "", slog.LevelInfo, ""},
		{http.StatusForbidden, "", slog.LevelInfo, ""},
		{http.StatusInternalServerError, "", slog.LevelError, ""},
	}
	for _, tc := range cases {
		c := captureDefaultLogger(t)
		h := StructuredRequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tc.mark != "" {
				MarkRejected(r.Context(), tc.mark)
			}
			w.WriteHeader(tc.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/delete-user", nil))

		if len(c.records) != 1 {
			t.Fatalf("status %d mark %q: expected one record, got %d", tc.status, tc.mark, len(c.records))
		}
		rec := c.records[0]
		if rec.Level != tc.level {
			t.Fatalf("status %d mark %q: expected level %v, got %v", tc.status, tc.mark, tc.level, rec.Level)
		}
		if got := recordAttrs(rec)["rejected_by"]; got != tc.rejectedBy {
			t.Fatalf("status %d mark %q: expected rejected_by %q, got %q", tc.status, tc.mark, tc.rejectedBy, got)
		}
	}
}

func TestRejectedByComesFromTheRejectingLayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := servicegomock.NewMockIdentityProvider(ctrl)
	checker := servicegomock.NewMockRoleChecker(ctrl)
	admin := &security.Claims{Email: "admin@example.com"}
	admin.Subject = "admin-1"
	reader := &security.Claims{Email: "reader@example.com"}
	reader.Subject = "user-1"
	verifier.EXPECT().VerifyToken(gomock.Any(), "admin").Return(admin, nil).AnyTimes()
	verifier.EXPECT().VerifyToken(gomock.Any(), "reader").Return(reader, nil).AnyTimes()
	checker.EXPECT().Check(gomock.Any(), "admin-1", domain.RoleAdmin).Return(service.RoleAllowed).AnyTimes()
	checker.EXPECT().Check(gomock.Any(), "user-1", domain.RoleAdmin).Return(service.RoleDenied).AnyTimes()

	// The handler answers 401 itself, as a failed step-up check does.
	h := StructuredRequestLogger(AuthMiddleware(verifier)(RequireRole(checker, domain.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}),
	)))

	cases := []struct {
		token      string
		level      slog.Level
		rejectedBy string
	}{
		{"", slog.LevelWarn, "auth"},
		{"reader", slog.LevelWarn, "role"},
		{"admin", slog.LevelInfo, ""},
	}
	for _, tc := range cases {
		c := captureDefaultLogger(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/delete-user", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)

		if len(c.records) != 1 {
			t.Fatalf("token %q: expected one record, got %d", tc.token, len(c.records))
		}
		rec := c.records[0]
		if rec.Level != tc.level {
			t.Fatalf("token %q: expected level %v, got %v", tc.token, tc.level, rec.Level)
		}
		if got := recordAttrs(rec)["rejected_by"]; got != tc.rejectedBy {
			t.Fatalf("token %q: expected rejected_by %q, got %q", tc.token, tc.rejectedBy, got)
		}
	}
}

func TestMarkRejectedOutsideLoggerIsNoop(t *testing.T) {
	MarkRejected(context.Background(), RejectedByAuth)
}

func TestStructuredRequestLoggerRecordsRoutePattern(t *testing.T) {
	c := captureDefaultLogger(t)

	r := chi.NewRouter()
	r.Use(StructuredRequestLogger)
	r.Patch("/api/v1/admin/books/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/books/b-1/status", nil)
	req.RemoteAddr = "198.51.100.10:3456"
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(c.records) != 1 {
		t.Fatalf("expected one record, got %d", len(c.records))
	}
	attrs := recordAttrs(c.records[0])
	if attrs["route"] != "/api/v1/admin/books/{id}/status" || attrs["status"] != "200" {
		t.Fatalf("unexpected route/status: %+v", attrs)
	}
	if attrs["path"] != "/api/v1/admin/books/b-1/status" || attrs["client_ip"] == "" || attrs["duration_ms"] == "" {
		t.Fatalf("expected path, client_ip and duration attrs, got %+v", attrs)
	}
}

func TestStructuredRequestLoggerStatusFallbackTo200(t *testing.T) {
	c := captureDefaultLogger(t)

	h := StructuredRequestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if len(c.records) != 1 {
		t.Fatalf("expected one record, got %d", len(c.records))
	}
	if got := recordAttrs(c.records[0])["status"]; got != "200" {
		t.Fatalf("expected fallback status 200, got %q", got)
	}
}

func recordAttrs(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}
