package middleware

import (
	"context"
	"net/http"

	jwtinfra "github.com/fawziabuhussin/task-manager-api/internal/infrastructure/jwt"
)

// Cookie and header names shared with the handlers.
const (
	AccessTokenCookie = "accessToken"
	CSRFCookie        = "csrfToken"
	CSRFHeader        = "x-csrf-token"
)

// TokenVerifier validates a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

type contextKey string

const claimsKey contextKey = "claims"

// Auth returns middleware that validates the accessToken cookie and injects
// its claims into the request context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(AccessTokenCookie)
			if err != nil || c.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, err := verifier.Verify(c.Value)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// WithClaims returns a copy of ctx carrying claims, for handler tests.
func WithClaims(ctx context.Context, claims *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
