package postgres

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const conversationSelect = `
	SELECT c.id, c.user_id, c.agent_id, COALESCE(a.name, ''), c.title, c.created_at, c.updated_at
	FROM conversations c
	LEFT JOIN agents a ON a.id = c.agent_id
`

// CreateConversation creates a new conversation between a user and an agent
func (p *PostgresDB) CreateConversation(ctx context.Context, conv *db.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}

	query := `
	INSERT INTO conversations (id, user_id, agent_id, title)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`

	err := p.conn.QueryRowContext(ctx, query, conv.ID, conv.UserID, conv.AgentID, conv.Title).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"user_id":         conv.UserID,
		"agent_id":        conv.AgentID,
	}).Info("Created new conversation")
	return nil
}

// GetConversation retrieves a specific conversation
func (p *PostgresDB) GetConversation(ctx context.Context, id string) (*db.Conversation, error) {
	if !validUUIDs(id) {
		return nil, db.ErrNotFound
	}

	var conv db.Conversation
	err := p.conn.QueryRowContext(ctx, conversationSelect+` WHERE c.id = $1`, id).
		Scan(&conv.ID, &conv.UserID, &conv.AgentID, &conv.AgentName, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error retrieving conversation: %w", notFound(err))
	}
	return &conv, nil
}

// ListConversationsByUser retrieves a user's conversations, most recent first
func (p *PostgresDB) ListConversationsByUser(ctx context.Context, userID string) ([]db.Conversation, error) {
	if !validUUIDs(userID) {
		return []db.Conversation{}, nil
	}
	return p.queryConversations(ctx, conversationSelect+` WHERE c.user_id = $1 ORDER BY c.updated_at DESC`, userID)
}

// ListAllConversations retrieves every conversation, most recent first
func (p *PostgresDB) ListAllConversations(ctx context.Context) ([]db.Conversation, error) {
	return p.queryConversations(ctx, conversationSelect+` ORDER BY c.updated_at DESC`)
}

// TouchConversation advances updated_at; it never moves backwards
func (p *PostgresDB) TouchConversation(ctx context.Context, id string, at time.Time) error {
	if !validUUIDs(id) {
		return db.ErrNotFound
	}

	res, err := p.conn.ExecContext(ctx,
		`UPDATE conversations SET updated_at = GREATEST(updated_at, $2) WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("error updating conversation timestamp: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (p *PostgresDB) queryConversations(ctx context.Context, query string, args ...any) ([]db.Conversation, error) {
	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]db.Conversation, 0)
	for rows.Next() {
		var conv db.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.AgentID, &conv.AgentName, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}
	return conversations, nil
}
