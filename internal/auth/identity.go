package auth

import "context"

// Roles carried in tokens
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AdminUserID is the fixed user id of the configured admin account
const AdminUserID = "00000000-0000-0000-0000-000000000000"

// Identity is the caller resolved from a bearer token
type Identity struct {
	UserID   string
	Username string
	Role     string
}

// IsAdmin reports whether the caller holds the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller stored by the auth middleware
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
