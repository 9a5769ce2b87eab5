package authz

import (
	"net/http"

	"github.com/rentledger/rentledger-api/internal/models"
)

// RequireRole returns a middleware that ensures the requester holds the
// required role. It runs after authentication, so a missing role means an
// authenticated caller with insufficient permissions: forbidden, not
// unauthorized.
func RequireRole(required models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromRequest(r)
			if !ok || role != required {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
