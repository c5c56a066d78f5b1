package handlers

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/auth"
	"net/http"
)

// caller returns the identity resolved by the auth middleware, writing a 401
// when it is missing
func caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Status(w, http.StatusUnauthorized, "Authentication required", nil)
	}
	return id, ok
}
