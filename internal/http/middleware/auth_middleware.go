package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*security.Claims, error)
}

// AuthMiddleware requires a "Bearer <token>" Authorization header. A missing
// or malformed header is rejected without calling the verifier. Every
// verification failure, including a verifier outage, yields the same 401.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "bearer")
				MarkRejected(r.Context(), RejectedByAuth)
				response.Error(w, r, http.StatusUnauthorized, "No authorization header")
				return
			}
			claims, err := verifier.VerifyToken(r.Context(), raw)
			if err != nil || claims == nil || claims.Subject == "" {
				if err != nil {
					slog.WarnContext(r.Context(), "access token rejected", "error", err.Error())
				}
				observability.RecordAccessTokenValidation(r.Context(), "invalid", "bearer")
				MarkRejected(r.Context(), RejectedByAuth)
				response.Error(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid", "bearer")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
