package postgres

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateUser stores a user with an already-hashed password
func (p *PostgresDB) CreateUser(ctx context.Context, username, email, passwordHash string) (*db.User, error) {
	user := &db.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	query := `
	INSERT INTO users (id, username, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
	`

	err := p.conn.QueryRowContext(ctx, query, user.ID, username, email, passwordHash).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return nil, db.ErrUsernameTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"username": username, "user_id": user.ID}).Info("Created new user")

	return user, nil
}

// GetUserByUsername retrieves a user by username
func (p *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	return p.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username)
}

// GetUserByID retrieves a user by id
func (p *PostgresDB) GetUserByID(ctx context.Context, id string) (*db.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, db.ErrNotFound
	}
	return p.getUser(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (p *PostgresDB) getUser(ctx context.Context, query string, arg string) (*db.User, error) {
	var user db.User
	err := p.conn.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", notFound(err))
	}
	return &user, nil
}
