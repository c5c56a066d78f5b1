package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
	maxPasswordLength = 128 // bcrypt ignores bytes past 72 but the cap is kept generous
	maxEmailLength    = 255
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// AuthRequestValidator validates account registration and the two login forms
type AuthRequestValidator struct{}

// NewAuthRequestValidator creates a new AuthRequestValidator
func NewAuthRequestValidator() *AuthRequestValidator {
	return &AuthRequestValidator{}
}

// ValidateUsername checks length and the allowed character set
func (v *AuthRequestValidator) ValidateUsername(username string) error {
	switch n := len(username); {
	case n == 0:
		return errors.New("username cannot be empty")
	case n < minUsernameLength || n > maxUsernameLength:
		return fmt.Errorf("username must be %d to %d characters long, got %d", minUsernameLength, maxUsernameLength, n)
	case !usernamePattern.MatchString(username):
		return errors.New("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks the password length bounds
func (v *AuthRequestValidator) ValidatePassword(password string) error {
	switch n := len(password); {
	case n == 0:
		return errors.New("password cannot be empty")
	case n < minPasswordLength || n > maxPasswordLength:
		return fmt.Errorf("password must be %d to %d characters long, got %d", minPasswordLength, maxPasswordLength, n)
	}
	return nil
}

// ValidateEmail checks the address shape. An empty email is allowed on registration.
func (v *AuthRequestValidator) ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must be at most %d characters long, got %d", maxEmailLength, len(email))
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateRegisterRequest validates a new marketplace account
func (v *AuthRequestValidator) ValidateRegisterRequest(username, email, password string) error {
	for _, err := range []error{
		v.ValidateUsername(username),
		v.ValidateEmail(email),
		v.ValidatePassword(password),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateLoginRequest only requires both fields; credential checks happen against the store
func (v *AuthRequestValidator) ValidateLoginRequest(username, password string) error {
	return requireCredentials("username", username, password)
}

// ValidateAdminLoginRequest validates an admin panel login, which is keyed by email
func (v *AuthRequestValidator) ValidateAdminLoginRequest(email, password string) error {
	email = strings.TrimSpace(email)
	if err := requireCredentials("email", email, password); err != nil {
		return err
	}
	return v.ValidateEmail(email)
}

func requireCredentials(idField, id, password string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", idField)
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	return nil
}
