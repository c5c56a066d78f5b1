package postgres

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const agentColumns = `id, name, description, category, pricing_tier, context_type, system_prompt,
	webhook_url, keywords, is_active, created_by, created_at, updated_at`

// CreateAgent inserts a new agent, filling ID and timestamps
func (p *PostgresDB) CreateAgent(ctx context.Context, agent *db.Agent) error {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}

	query := `
	INSERT INTO agents (id, name, description, category, pricing_tier, context_type, system_prompt,
		webhook_url, keywords, is_active, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	err := p.conn.QueryRowContext(ctx, query,
		agent.ID, agent.Name, agent.Description, agent.Category, agent.PricingTier, agent.ContextType,
		agent.SystemPrompt, agent.WebhookURL, pq.Array(keywordsOrEmpty(agent.Keywords)), agent.IsActive, agent.CreatedBy,
	).Scan(&agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating agent: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"agent_id": agent.ID, "name": agent.Name}).Info("Created new agent")
	return nil
}

// GetAgent retrieves an agent by id, active or not
func (p *PostgresDB) GetAgent(ctx context.Context, id string) (*db.Agent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, db.ErrNotFound
	}

	row := p.conn.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
	agent, err := scanAgent(row)
	if err != nil {
		return nil, fmt.Errorf("error retrieving agent: %w", notFound(err))
	}
	return agent, nil
}

// ListAgents returns agents matching filter, newest first
func (p *PostgresDB) ListAgents(ctx context.Context, filter db.AgentFilter) ([]db.Agent, error) {
	var (
		where []string
		args  []any
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = TRUE")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d OR EXISTS (SELECT 1 FROM unnest(keywords) k WHERE LOWER(k) LIKE $%d))",
			n, n, n))
	}

	query := `SELECT ` + agentColumns + ` FROM agents`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying agents: %w", err)
	}
	defer rows.Close()

	agents := make([]db.Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning agent: %w", err)
		}
		agents = append(agents, *agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating agents: %w", err)
	}

	return agents, nil
}

// UpdateAgent overwrites the mutable fields of an agent
func (p *PostgresDB) UpdateAgent(ctx context.Context, agent *db.Agent) error {
	if _, err := uuid.Parse(agent.ID); err != nil {
		return db.ErrNotFound
	}

	query := `
	UPDATE agents
	SET name = $2, description = $3, category = $4, pricing_tier = $5, context_type = $6,
		system_prompt = $7, webhook_url = $8, keywords = $9, is_active = $10, updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING created_by, created_at, updated_at
	`

	err := p.conn.QueryRowContext(ctx, query,
		agent.ID, agent.Name, agent.Description, agent.Category, agent.PricingTier, agent.ContextType,
		agent.SystemPrompt, agent.WebhookURL, pq.Array(keywordsOrEmpty(agent.Keywords)), agent.IsActive,
	).Scan(&agent.CreatedBy, &agent.CreatedAt, &agent.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating agent: %w", notFound(err))
	}

	logger.Log.WithField("agent_id", agent.ID).Info("Updated agent")
	return nil
}

// DeactivateAgent clears is_active; the row and its history are kept
func (p *PostgresDB) DeactivateAgent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return db.ErrNotFound
	}

	res, err := p.conn.ExecContext(ctx,
		`UPDATE agents SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deactivating agent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}

	logger.Log.WithField("agent_id", id).Info("Deactivated agent")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*db.Agent, error) {
	var (
		agent   db.Agent
		webhook sql.NullString
	)
	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Description, &agent.Category, &agent.PricingTier, &agent.ContextType,
		&agent.SystemPrompt, &webhook, pq.Array(&agent.Keywords), &agent.IsActive, &agent.CreatedBy,
		&agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if webhook.Valid && webhook.String != "" {
		agent.WebhookURL = &webhook.String
	}
	if agent.Keywords == nil {
		agent.Keywords = []string{}
	}
	return &agent, nil
}

func keywordsOrEmpty(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
