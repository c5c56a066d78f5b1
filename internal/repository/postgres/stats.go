package postgres

import (
	"agent-market/internal/repository/db"
	"context"
	"fmt"
)

// GetStats aggregates dashboard totals in a single round trip
func (p *PostgresDB) GetStats(ctx context.Context) (*db.Stats, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM conversations),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM agents),
		(SELECT COUNT(*) FROM agents WHERE is_active),
		(SELECT COUNT(*) FROM subscriptions WHERE status = 'active')
	`

	var stats db.Stats
	err := p.conn.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalConversations,
		&stats.TotalMessages,
		&stats.TotalAgents,
		&stats.ActiveAgents,
		&stats.ActiveSubscriptions,
	)
	if err != nil {
		return nil, fmt.Errorf("error computing stats: %w", err)
	}
	return &stats, nil
}
