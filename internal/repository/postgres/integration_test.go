package postgres

import (
	"agent-market/internal/config"
	"agent-market/internal/repository/db"
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// newIntegrationDB connects to the database named by POSTGRES_TEST_* and
// empties every table. Tests are skipped when POSTGRES_TEST_HOST is unset.
func newIntegrationDB(t *testing.T) *PostgresDB {
	t.Helper()

	host := os.Getenv("POSTGRES_TEST_HOST")
	if host == "" {
		t.Skip("POSTGRES_TEST_HOST not set, skipping Postgres integration test")
	}
	cfg := config.DatabaseConfig{
		Driver:   "postgres",
		Host:     host,
		Port:     envOr("POSTGRES_TEST_PORT", "5432"),
		User:     envOr("POSTGRES_TEST_USER", "postgres"),
		Password: envOr("POSTGRES_TEST_PASSWORD", "postgres"),
		Name:     envOr("POSTGRES_TEST_DB", "agentmarket_test"),
		SSLMode:  "disable",
	}

	ctx := context.Background()
	pg, err := NewPostgresDB(ctx, cfg)
	if err != nil {
		t.Fatalf("NewPostgresDB() error = %v", err)
	}
	t.Cleanup(func() { pg.Close() })

	if _, err := pg.conn.ExecContext(ctx,
		`TRUNCATE messages, conversations, subscriptions, agents, users CASCADE`); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
	return pg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createTestAgent(t *testing.T, pg *PostgresDB) *db.Agent {
	t.Helper()
	agent := &db.Agent{
		Name:        "Code Reviewer",
		PricingTier: db.PricingBasic,
		ContextType: db.ContextPredefined,
		Keywords:    []string{"go", "review"},
		IsActive:    true,
	}
	if err := pg.CreateAgent(context.Background(), agent); err != nil {
		t.Fatalf("CreateAgent() error = %v", err)
	}
	return agent
}

func TestIntegration_UsernameUnique(t *testing.T) {
	pg := newIntegrationDB(t)
	ctx := context.Background()

	if _, err := pg.CreateUser(ctx, "alice", "", "hash"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if _, err := pg.CreateUser(ctx, "alice", "", "hash"); !errors.Is(err, db.ErrUsernameTaken) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrUsernameTaken", err)
	}
}

func TestIntegration_ActiveSubscriptionIndex(t *testing.T) {
	pg := newIntegrationDB(t)
	ctx := context.Background()

	user, err := pg.CreateUser(ctx, "bob", "", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	agent := createTestAgent(t, pg)

	first := &db.Subscription{UserID: user.ID, AgentID: agent.ID, Tier: db.PricingBasic, Agent: db.SnapshotOf(agent)}
	if err := pg.CreateSubscription(ctx, first); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	dup := &db.Subscription{UserID: user.ID, AgentID: agent.ID, Tier: db.PricingPremium}
	if err := pg.CreateSubscription(ctx, dup); !errors.Is(err, db.ErrAlreadySubscribed) {
		t.Fatalf("duplicate CreateSubscription() error = %v, want ErrAlreadySubscribed", err)
	}

	got, err := pg.GetActiveSubscription(ctx, user.ID, agent.ID)
	if err != nil {
		t.Fatalf("GetActiveSubscription() error = %v", err)
	}
	if got.Agent.Name != "Code Reviewer" || len(got.Agent.Keywords) != 2 {
		t.Errorf("snapshot = %+v, want the agent at subscribe time", got.Agent)
	}

	if err := pg.UpdateSubscriptionStatus(ctx, first.ID, db.StatusCancelled); err != nil {
		t.Fatalf("UpdateSubscriptionStatus() error = %v", err)
	}
	again := &db.Subscription{UserID: user.ID, AgentID: agent.ID, Tier: db.PricingBasic}
	if err := pg.CreateSubscription(ctx, again); err != nil {
		t.Fatalf("CreateSubscription() after cancel error = %v", err)
	}
	if err := pg.UpdateSubscriptionStatus(ctx, first.ID, db.StatusActive); !errors.Is(err, db.ErrAlreadySubscribed) {
		t.Errorf("reactivating a second subscription error = %v, want ErrAlreadySubscribed", err)
	}
}

func TestIntegration_MessageOrderWithEqualTimestamps(t *testing.T) {
	pg := newIntegrationDB(t)
	ctx := context.Background()

	user, err := pg.CreateUser(ctx, "carol", "", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	agent := createTestAgent(t, pg)
	conv := &db.Conversation{UserID: user.ID, AgentID: agent.ID, Title: "Chat with Code Reviewer"}
	if err := pg.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	want := []string{"first", "second", "third"}
	for _, content := range want {
		msg := &db.Message{ConversationID: conv.ID, Role: db.RoleUser, Content: content, CreatedAt: at}
		if err := pg.AddMessage(ctx, msg); err != nil {
			t.Fatalf("AddMessage() error = %v", err)
		}
	}

	messages, err := pg.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != len(want) {
		t.Fatalf("got %d messages, want %d", len(messages), len(want))
	}
	for i, m := range messages {
		if m.Content != want[i] {
			t.Errorf("message %d = %q, want %q", i, m.Content, want[i])
		}
	}

	orphan := &db.Message{ConversationID: "6f1c2a53-2a4e-4c3f-9b0e-3f4d2c1b0a99", Role: db.RoleUser, Content: "x"}
	if err := pg.AddMessage(ctx, orphan); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("AddMessage() to missing conversation error = %v, want ErrNotFound", err)
	}
}
