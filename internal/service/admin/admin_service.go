package admin

import (
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for a wrong admin email or password
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	// ErrLoginDisabled is returned when no admin password is configured
	ErrLoginDisabled = errors.New("admin login is not configured")
)

// AdminService backs the admin panel
type AdminService struct {
	db     db.Database
	config config.AdminConfig
}

// NewAdminService creates a new AdminService
func NewAdminService(database db.Database, adminConfig config.AdminConfig) *AdminService {
	return &AdminService{
		db:     database,
		config: adminConfig,
	}
}

// Authenticate checks an email/password pair against the configured admin
// account. A bcrypt hash takes precedence over a plain password.
func (s *AdminService) Authenticate(ctx context.Context, email, password string) error {
	if s.config.PasswordHash == "" && s.config.Password == "" {
		return ErrLoginDisabled
	}

	emailOK := strings.EqualFold(strings.TrimSpace(email), s.config.Email)

	var passwordOK bool
	if s.config.PasswordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	}

	if !emailOK || !passwordOK {
		logger.FromContext(ctx).WithField("email", email).Warn("Admin login failed")
		return ErrInvalidCredentials
	}

	logger.FromContext(ctx).Info("Admin logged in")
	return nil
}

// Stats returns the dashboard totals
func (s *AdminService) Stats(ctx context.Context) (*db.Stats, error) {
	stats, err := s.db.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
