package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-test-secret-test-secret!")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	tests := []struct {
		name string
		id   Identity
	}{
		{"user", Identity{UserID: "u-1", Username: "alice", Role: RoleUser}},
		{"admin", Identity{UserID: AdminUserID, Username: "admin@example.com", Role: RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := issuer.Issue(tt.id)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			got, err := issuer.Validate(token)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if *got != tt.id {
				t.Errorf("Validate() = %+v, want %+v", *got, tt.id)
			}
		})
	}
}

func TestTokenIssuer_RejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	good, _ := issuer.Issue(Identity{UserID: "u-1", Username: "alice", Role: RoleUser})

	expiredIssuer := NewTokenIssuer(testSecret, time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredIssuer.Issue(Identity{UserID: "u-1", Username: "alice"})

	foreign, _ := NewTokenIssuer([]byte("another-secret-another-secret-1234"), time.Hour).Issue(Identity{UserID: "u-1"})

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"tampered", good + "x"},
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenIssuer_DefaultRole(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, 0)
	token, _ := issuer.Issue(Identity{UserID: "u-1", Username: "alice"})

	got, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.Role != RoleUser {
		t.Errorf("Role = %q, want %q", got.Role, RoleUser)
	}
	if got.IsAdmin() {
		t.Error("Expected non-admin identity")
	}
}
