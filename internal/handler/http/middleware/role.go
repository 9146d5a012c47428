package middleware

import (
	"fmt"
	"net/http"

	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/handler/http/response"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !user.HasPermission(claims.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, claims.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
