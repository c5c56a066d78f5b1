package auth

import (
	"agent-market/internal/config"
	"agent-market/internal/repository/db"
	"agent-market/internal/repository/memory"
	"agent-market/internal/service/admin"
	"agent-market/internal/testutil"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestHandlers(t *testing.T, users db.UserRepository) *Handlers {
	t.Helper()
	adminSvc := admin.NewAdminService(memory.New(), config.AdminConfig{
		Email:    "admin@example.com",
		Password: "admin-password",
	})
	return NewHandlers(users, NewTokenIssuer(testSecret, time.Hour), adminSvc, "admin@example.com")
}

func post(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) TokenResponse {
	t.Helper()
	var resp TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	store := memory.New()
	h := newTestHandlers(t, store)

	rec := post(h.RegisterHandler, `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	registered := decodeToken(t, rec)
	if registered.Token == "" || registered.User.Username != "alice" || registered.User.Role != RoleUser {
		t.Errorf("unexpected register response: %+v", registered)
	}

	stored, err := store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "secret1" {
		t.Error("Expected password to be hashed")
	}

	rec = post(h.LoginHandler, `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	loggedIn := decodeToken(t, rec)

	id, err := h.issuer.Validate(loggedIn.Token)
	if err != nil {
		t.Fatalf("login token invalid: %v", err)
	}
	if id.UserID != stored.ID {
		t.Errorf("token user id = %s, want %s", id.UserID, stored.ID)
	}
}

func TestRegisterHandler_Errors(t *testing.T) {
	store := memory.New()
	hash, _ := HashPassword("secret1")
	_, _ = store.CreateUser(context.Background(), "taken", "", hash)
	h := newTestHandlers(t, store)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed body", `{`, http.StatusBadRequest},
		{"short username", `{"username":"ab","password":"secret1"}`, http.StatusBadRequest},
		{"short password", `{"username":"alice","password":"123"}`, http.StatusBadRequest},
		{"bad email", `{"username":"alice","email":"nope","password":"secret1"}`, http.StatusBadRequest},
		{"duplicate", `{"username":"taken","password":"secret1"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h.RegisterHandler, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestLoginHandler_Errors(t *testing.T) {
	store := memory.New()
	hash, _ := HashPassword("secret1")
	_, _ = store.CreateUser(context.Background(), "alice", "", hash)
	h := newTestHandlers(t, store)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed body", `not json`, http.StatusBadRequest},
		{"missing password", `{"username":"alice"}`, http.StatusBadRequest},
		{"unknown user", `{"username":"bob","password":"secret1"}`, http.StatusUnauthorized},
		{"wrong password", `{"username":"alice","password":"wrong-one"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h.LoginHandler, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestLoginHandler_StoreError(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*db.User, error) {
			return nil, errors.New("db down")
		},
	}
	h := newTestHandlers(t, mockDB)

	rec := post(h.LoginHandler, `{"username":"alice","password":"secret1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAdminLoginHandler(t *testing.T) {
	h := newTestHandlers(t, memory.New())

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"email":"admin@example.com","password":"admin-password"}`, http.StatusOK},
		{"wrong password", `{"email":"admin@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"wrong email", `{"email":"root@example.com","password":"admin-password"}`, http.StatusUnauthorized},
		{"missing email", `{"password":"admin-password"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h.AdminLoginHandler, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeToken(t, rec)
			id, err := h.issuer.Validate(resp.Token)
			if err != nil {
				t.Fatalf("admin token invalid: %v", err)
			}
			if !id.IsAdmin() || id.UserID != AdminUserID {
				t.Errorf("identity = %+v, want admin", *id)
			}
		})
	}
}

func TestAdminLoginHandler_Disabled(t *testing.T) {
	adminSvc := admin.NewAdminService(memory.New(), config.AdminConfig{Email: "admin@example.com"})
	h := NewHandlers(memory.New(), NewTokenIssuer(testSecret, time.Hour), adminSvc, "admin@example.com")

	rec := post(h.AdminLoginHandler, `{"email":"admin@example.com","password":"anything"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
