package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sinatle/donation/internal/service"
)

type contextKey string

// ClaimsContextKey is the context key for the authenticated token claims.
const ClaimsContextKey contextKey = "claims"

// RequireAuth validates the Authorization bearer token and puts its claims in
// the request context. Requests without a valid token get 401.
func RequireAuth(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the authenticated claims from the request context.
// Returns nil outside of RequireAuth-protected routes.
func GetClaims(ctx context.Context) *service.TokenClaims {
	claims, ok := ctx.Value(ClaimsContextKey).(*service.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
