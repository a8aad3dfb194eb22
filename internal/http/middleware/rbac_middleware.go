package middleware

import (
	"net/http"

	"github.com/hashebooks/hashebooks-backend/internal/domain"
	"github.com/hashebooks/hashebooks-backend/internal/http/response"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

// RequireRole admits the request only on service.RoleAllowed. Denials and
// lookup errors both end in 403.
func RequireRole(checker service.RoleChecker, role domain.AppRole) func(http.Handler) http.Handler {
	message := "Insufficient role"
	if role == domain.RoleAdmin {
		message = "Admin access required"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				MarkRejected(r.Context(), RejectedByRole)
				response.Error(w, r, http.StatusUnauthorized, "No authorization header")
				return
			}
			if !checker.Check(r.Context(), claims.Subject, role).Authorized() {
				MarkRejected(r.Context(), RejectedByRole)
				response.Error(w, r, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
