package app

import (
	"agent-market/internal/config"
	"agent-market/internal/repository/db"
	"context"
)

// Config is the dependency container passed to handlers and services
type Config struct {
	DB        db.Database
	AppConfig *config.AppConfig
}

// NewConfig wires the store and the loaded configuration together
func NewConfig(database db.Database, appConfig *config.AppConfig) *Config {
	return &Config{
		DB:        database,
		AppConfig: appConfig,
	}
}

// Seed inserts the startup data enabled in the seed configuration: the demo
// user and the agent catalog file.
func (c *Config) Seed(ctx context.Context) error {
	seedConfig := c.AppConfig.Seed

	if seedConfig.DemoUser {
		if err := SeedDemoUser(ctx, c.DB); err != nil {
			return err
		}
	}

	if seedConfig.AgentsPath == "" {
		return nil
	}
	catalog, err := config.NewAgentCatalog(seedConfig.AgentsPath)
	if err != nil {
		return err
	}
	_, err = SeedAgents(ctx, c.DB, catalog)
	return err
}
