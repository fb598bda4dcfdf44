package middleware

import (
	"net/http"

	"pacs-study-browser/pkg/response"
)

// RoleAdmin grants access to the query audit log.
const RoleAdmin = "admin"

// RequireRole creates a middleware that checks if the caller has any of the required roles.
// Roles are read from the principal set by AuthMiddleware; with authentication
// disabled every caller passes.
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			if principal.Roles == nil {
				next.ServeHTTP(w, r)
				return
			}

			allowed := false
			for _, role := range principal.Roles {
				for _, allowedRole := range allowedRoles {
					if role == allowedRole {
						allowed = true
						break
					}
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}
