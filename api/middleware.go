package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sports-hub/sports-hub-api/models"
)

// Middleware verifies the bearer access token and threads the decoded
// identity through the request context. Expired tokens get a distinct
// TOKEN_EXPIRED code so clients know to rotate instead of re-authenticating.
func Middleware(tm *TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		token := bearerToken(r)
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "Access token required"}`))
			return
		}

		claims, err := tm.VerifyAccess(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "Token expired", "code": "TOKEN_EXPIRED"}`))
				return
			}
			zap.S().Errorw("invalid access token",
				"url", r.URL,
				"error", err,
			)
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message": "Invalid token"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
	})
}

// AdminMiddleware is Middleware plus a role gate for admin-scoped routes
func AdminMiddleware(tm *TokenManager, next http.Handler) http.Handler {
	return Middleware(tm, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := IdentityFromContext(r.Context())
		if !ok || (claims.Role != models.RoleAdmin && claims.Role != models.RoleSuperAdmin) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message": "Admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
