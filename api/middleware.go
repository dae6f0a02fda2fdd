/*
middleware.go - Authentication and role-gating middleware

PURPOSE:
  Verifies the Bearer token on protected routes, stashes the verified
  claims in the request context, and gates route groups by account role.
  Handlers read the identity through ClaimsFrom and never parse tokens
  themselves.

SEE ALSO:
  - ../auth: token issuing and verification
  - server.go: where the middleware is mounted
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
)

type claimsKey struct{}

// ClaimsFrom returns the verified claims for the request, or nil on
// unauthenticated routes.
func ClaimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

// Authenticate verifies the Authorization header and injects the claims.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}
		claims, err := h.Tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group to the given roles. Must be mounted
// after Authenticate.
func RequireRole(roles ...canteen.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFrom(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
				return
			}
			for _, role := range roles {
				if canteen.Role(claims.Role) == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Insufficient role", nil)
		})
	}
}
