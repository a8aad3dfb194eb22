package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/health"
	"github.com/hashebooks/hashebooks-backend/internal/http/handler"
	"github.com/hashebooks/hashebooks-backend/internal/http/middleware"
	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

type Dependencies struct {
	AccountHandler      *handler.AccountHandler
	NotificationHandler *handler.NotificationHandler
	AuthEmailHook       *handler.AuthEmailHookHandler
	BookReviewHandler   *handler.BookReviewHandler
	TokenVerifier       middleware.TokenVerifier
	RoleChecker         service.RoleChecker
	CORSOrigins         []string
	CORSAllowHeaders    []string
	MinResponseTime     time.Duration
	Readiness           *health.ProbeRunner
	EnableOTelHTTP      bool
}

const maxBodyBytes = 1 << 20

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(dep.CORSOrigins, dep.CORSAllowHeaders))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// Set before mounting so every sub-router answers in the JSON error
	// shape; under /api/v1 these still pass through the response floor.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.JSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"error":  "dependencies are not ready",
			"checks": results,
		})
	})

	authn := middleware.AuthMiddleware(dep.TokenVerifier)
	requireAdmin := middleware.RequireRole(dep.RoleChecker, domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ConstantTime(dep.MinResponseTime))

		r.With(authn, requireAdmin).Post("/delete-user", dep.AccountHandler.DeleteUser)
		r.With(authn).Post("/send-welcome-email", dep.NotificationHandler.SendWelcome)
		r.Post("/send-book-status-email", dep.NotificationHandler.SendBookStatus)
		r.HandleFunc("/hooks/send-auth-email", dep.AuthEmailHook.SendAuthEmail)

		r.Route("/admin/books", func(r chi.Router) {
			r.Use(authn, requireAdmin)
			r.Get("/", dep.BookReviewHandler.ListQueue)
			r.Patch("/{id}/status", dep.BookReviewHandler.ChangeStatus)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
