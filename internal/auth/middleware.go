package auth

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/logger"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// Middleware resolves the bearer token into an Identity on the request
// context. Requests without a valid token are rejected with 401.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respond.Status(w, http.StatusUnauthorized, "Missing authorization header", nil)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				respond.Status(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
				return
			}

			id, err := issuer.Validate(strings.TrimSpace(token))
			if err != nil {
				logger.FromContext(r.Context()).WithError(err).Debug("Rejected bearer token")
				respond.Status(w, http.StatusUnauthorized, "Invalid token", nil)
				return
			}

			ctx := WithIdentity(r.Context(), *id)
			ctx = logger.WithFields(ctx, logrus.Fields{
				"user_id":  id.UserID,
				"username": id.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after
// Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			respond.Status(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		if !id.IsAdmin() {
			respond.Status(w, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
