package postgres

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AddMessage appends a message to a conversation. created_at defaults to
// clock_timestamp() so messages inserted in one transaction still differ;
// seq breaks any remaining tie in insertion order.
func (p *PostgresDB) AddMessage(ctx context.Context, msg *db.Message) error {
	if !validUUIDs(msg.ConversationID) {
		return db.ErrNotFound
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	metadata := msg.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("error encoding message metadata: %w", err)
	}

	var query string
	args := []any{msg.ID, msg.ConversationID, msg.Role, msg.Content, encoded}
	if msg.CreatedAt.IsZero() {
		query = `
		INSERT INTO messages (id, conversation_id, role, content, metadata)
		SELECT $1, $2, $3, $4, $5 WHERE EXISTS (SELECT 1 FROM conversations WHERE id = $2)
		RETURNING created_at
		`
	} else {
		query = `
		INSERT INTO messages (id, conversation_id, role, content, metadata, created_at)
		SELECT $1, $2, $3, $4, $5, $6 WHERE EXISTS (SELECT 1 FROM conversations WHERE id = $2)
		RETURNING created_at
		`
		args = append(args, msg.CreatedAt)
	}

	if err := p.conn.QueryRowContext(ctx, query, args...).Scan(&msg.CreatedAt); err != nil {
		return fmt.Errorf("error adding message: %w", notFound(err))
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
		"role":            msg.Role,
	}).Debug("Stored message")
	return nil
}

// ListMessages returns a conversation's messages in append order
func (p *PostgresDB) ListMessages(ctx context.Context, conversationID string) ([]db.Message, error) {
	messages := make([]db.Message, 0)
	if !validUUIDs(conversationID) {
		return messages, nil
	}

	query := `
	SELECT id, conversation_id, role, content, metadata, created_at
	FROM messages
	WHERE conversation_id = $1
	ORDER BY created_at ASC, seq ASC
	`

	rows, err := p.conn.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg      db.Message
			metadata []byte
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &metadata, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		msg.Metadata = map[string]any{}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &msg.Metadata); err != nil {
				return nil, fmt.Errorf("error decoding message metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
