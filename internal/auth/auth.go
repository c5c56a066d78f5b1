package auth

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/service/admin"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthenticator checks the admin panel credentials
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) error
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type TokenResponse struct {
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// Handlers serves registration and login
type Handlers struct {
	users      db.UserRepository
	issuer     *TokenIssuer
	admin      AdminAuthenticator
	adminEmail string
	validator  *validation.AuthRequestValidator
}

// NewHandlers creates auth handlers
func NewHandlers(users db.UserRepository, issuer *TokenIssuer, adminAuth AdminAuthenticator, adminEmail string) *Handlers {
	return &Handlers{
		users:      users,
		issuer:     issuer,
		admin:      adminAuth,
		adminEmail: adminEmail,
		validator:  validation.NewAuthRequestValidator(),
	}
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LoginHandler authenticates a user and returns a JWT
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := h.validator.ValidateLoginRequest(req.Username, req.Password); err != nil {
		respond.Status(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	log := logger.FromContext(r.Context()).WithField("username", req.Username)

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Error looking up user")
			respond.Status(w, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		log.Warn("Login failed: user not found")
		respond.Status(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Warn("Login failed: invalid password")
		respond.Status(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	h.sendToken(w, r, http.StatusOK, "", Identity{UserID: user.ID, Username: user.Username, Role: RoleUser})
	log.Info("User logged in")
}

// RegisterHandler creates a new user account
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validator.ValidateRegisterRequest(req.Username, req.Email, req.Password); err != nil {
		respond.Status(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	log := logger.FromContext(r.Context()).WithField("username", req.Username)

	hash, err := HashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("Error hashing password")
		respond.Status(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			respond.Status(w, http.StatusConflict, "Username already exists", nil)
			return
		}
		log.WithError(err).Error("Registration failed")
		respond.Status(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	h.sendToken(w, r, http.StatusCreated, "User registered successfully", Identity{UserID: user.ID, Username: user.Username, Role: RoleUser})
	log.WithField("user_id", user.ID).Info("User registered")
}

// AdminLoginHandler checks the admin credentials and returns an admin JWT
func (h *Handlers) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	if err := h.validator.ValidateAdminLoginRequest(req.Email, req.Password); err != nil {
		respond.Status(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	if err := h.admin.Authenticate(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, admin.ErrLoginDisabled) {
			respond.Status(w, http.StatusServiceUnavailable, "Admin login is not configured", nil)
			return
		}
		respond.Status(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	h.sendToken(w, r, http.StatusOK, "", Identity{UserID: AdminUserID, Username: h.adminEmail, Role: RoleAdmin})
}

func (h *Handlers) sendToken(w http.ResponseWriter, r *http.Request, status int, message string, id Identity) {
	token, err := h.issuer.Issue(id)
	if err != nil {
		logger.FromContext(r.Context()).WithFields(logrus.Fields{
			"user_id": id.UserID,
			"error":   err,
		}).Error("Error generating token")
		respond.Status(w, http.StatusInternalServerError, "Error generating token", nil)
		return
	}

	respond.JSON(w, status, TokenResponse{
		Message: message,
		Token:   token,
		User:    UserInfo{ID: id.UserID, Username: id.Username, Role: id.Role},
	})
}
