package auth

import (
	"net/http"
	"strings"

	"github.com/examgate/examgate/internal/exam"
)

// JWTMiddleware resolves the bearer token into an Identity on the
// request context. Requests without a valid token are rejected with 401
// before any handler runs.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				httpError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				httpError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			id := Identity{UserID: claims.Sub, Role: exam.NormalizeRole(claims.Role)}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
