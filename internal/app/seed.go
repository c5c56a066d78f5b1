package app

import (
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoUsername = "demo"
	demoEmail    = "demo@example.com"
	demoPassword = "demo123"
)

// SeedDemoUser creates the demo user if it doesn't exist
func SeedDemoUser(ctx context.Context, users db.UserRepository) error {
	if _, err := users.GetUserByUsername(ctx, demoUsername); err == nil {
		logger.Log.Info("Demo user already exists, skipping seed")
		return nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("error looking up demo user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing demo password: %w", err)
	}

	if _, err := users.CreateUser(ctx, demoUsername, demoEmail, string(hash)); err != nil && !errors.Is(err, db.ErrUsernameTaken) {
		return fmt.Errorf("error seeding demo user: %w", err)
	}

	logger.Log.Info("Demo user seeded successfully")
	return nil
}

// SeedAgents inserts catalog agents whose name is not taken yet. It returns
// the number of agents created.
func SeedAgents(ctx context.Context, agents db.AgentRepository, catalog *config.AgentCatalog) (int, error) {
	if catalog.Len() == 0 {
		return 0, nil
	}

	existing, err := agents.ListAgents(ctx, db.AgentFilter{})
	if err != nil {
		return 0, fmt.Errorf("error listing agents: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	for _, a := range existing {
		taken[strings.ToLower(a.Name)] = true
	}

	created := 0
	for _, seed := range catalog.Agents() {
		if taken[strings.ToLower(seed.Name)] {
			continue
		}

		agent := &db.Agent{
			Name:         seed.Name,
			Description:  seed.Description,
			Category:     seed.Category,
			PricingTier:  orDefault(seed.PricingTier, db.PricingBasic),
			ContextType:  orDefault(seed.ContextType, db.ContextPredefined),
			SystemPrompt: seed.SystemPrompt,
			Keywords:     validation.NormalizeKeywords(seed.Keywords),
			IsActive:     true,
			CreatedBy:    "seed",
		}
		if seed.WebhookURL != "" {
			webhook := seed.WebhookURL
			agent.WebhookURL = &webhook
		}

		if err := agents.CreateAgent(ctx, agent); err != nil {
			return created, fmt.Errorf("error seeding agent %q: %w", seed.Name, err)
		}
		taken[strings.ToLower(seed.Name)] = true
		created++
	}

	logger.Log.WithFields(logrus.Fields{
		"created": created,
		"catalog": catalog.Len(),
	}).Info("Agent catalog seeded")
	return created, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
