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

// activeSubscriptionIndex enforces one active subscription per (user, agent)
const activeSubscriptionIndex = "uq_subscriptions_active"

const subscriptionColumns = `id, user_id, agent_id, tier, status, agent, created_at, updated_at`

// CreateSubscription inserts a subscription. The partial unique index makes
// the duplicate check atomic; a violation surfaces as db.ErrAlreadySubscribed.
func (p *PostgresDB) CreateSubscription(ctx context.Context, sub *db.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Status == "" {
		sub.Status = db.StatusActive
	}

	snapshot, err := json.Marshal(sub.Agent)
	if err != nil {
		return fmt.Errorf("error encoding agent snapshot: %w", err)
	}

	query := `
	INSERT INTO subscriptions (id, user_id, agent_id, tier, status, agent)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`

	err = p.conn.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.AgentID, sub.Tier, sub.Status, snapshot).
		Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, activeSubscriptionIndex) {
			return db.ErrAlreadySubscribed
		}
		return fmt.Errorf("error creating subscription: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
		"agent_id":        sub.AgentID,
		"tier":            sub.Tier,
	}).Info("Created subscription")
	return nil
}

// GetActiveSubscription returns the active subscription for the pair, if any
func (p *PostgresDB) GetActiveSubscription(ctx context.Context, userID, agentID string) (*db.Subscription, error) {
	if !validUUIDs(userID, agentID) {
		return nil, db.ErrNotFound
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE user_id = $1 AND agent_id = $2 AND status = 'active'`

	sub, err := scanSubscription(p.conn.QueryRowContext(ctx, query, userID, agentID))
	if err != nil {
		return nil, fmt.Errorf("error retrieving subscription: %w", notFound(err))
	}
	return sub, nil
}

// ListActiveSubscriptions returns the user's active subscriptions, newest first
func (p *PostgresDB) ListActiveSubscriptions(ctx context.Context, userID string) ([]db.Subscription, error) {
	subs := make([]db.Subscription, 0)
	if !validUUIDs(userID) {
		return subs, nil
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	WHERE user_id = $1 AND status = 'active'
	ORDER BY created_at DESC`

	rows, err := p.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying subscriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateSubscriptionStatus moves a subscription to status
func (p *PostgresDB) UpdateSubscriptionStatus(ctx context.Context, id, status string) error {
	if !validUUIDs(id) {
		return db.ErrNotFound
	}

	res, err := p.conn.ExecContext(ctx,
		`UPDATE subscriptions SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, status)
	if err != nil {
		if isUniqueViolation(err, activeSubscriptionIndex) {
			return db.ErrAlreadySubscribed
		}
		return fmt.Errorf("error updating subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}

	logger.Log.WithFields(logrus.Fields{"subscription_id": id, "status": status}).Info("Updated subscription status")
	return nil
}

func scanSubscription(row rowScanner) (*db.Subscription, error) {
	var (
		sub      db.Subscription
		snapshot []byte
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.AgentID, &sub.Tier, &sub.Status, &snapshot, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &sub.Agent); err != nil {
			return nil, fmt.Errorf("error decoding agent snapshot: %w", err)
		}
	}
	return &sub, nil
}

// validUUIDs guards UUID columns from malformed ids, which Postgres would
// reject with a syntax error rather than an empty result
func validUUIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
