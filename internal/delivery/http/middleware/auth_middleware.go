package middleware

import (
	"context"
	"net/http"
	"strings"

	"pacs-study-browser/pkg/jwt"
	"pacs-study-browser/pkg/response"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"

	// SessionHeader picks the study page session when authentication is disabled.
	SessionHeader = "X-Session-ID"

	anonymousSession = "anonymous"
)

// Principal identifies the caller and the study page session it works on.
type Principal struct {
	SessionID string
	UserID    string
	// Roles is nil when authentication is disabled.
	Roles []string
}

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	enabled    bool
}

func NewAuthMiddleware(jwtService *jwt.JWTService, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		enabled:    enabled,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" {
				sessionID = anonymousSession
			}
			ctx := WithPrincipal(r.Context(), Principal{SessionID: sessionID, UserID: sessionID})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}

		// one study page per user and browser tab
		sessionID := claims.UserID
		if tab := r.Header.Get(SessionHeader); tab != "" {
			sessionID += ":" + tab
		}

		ctx := WithPrincipal(r.Context(), Principal{
			SessionID: sessionID,
			UserID:    claims.UserID,
			Roles:     roles,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipalFromContext extracts the caller from context
func GetPrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(Principal)
	return p, ok
}
