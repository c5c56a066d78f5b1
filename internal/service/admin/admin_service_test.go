package admin

import (
	"agent-market/internal/config"
	"agent-market/internal/repository/db"
	"agent-market/internal/repository/memory"
	"agent-market/internal/testutil"
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestAdminService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		config   config.AdminConfig
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "plain password",
			config:   config.AdminConfig{Email: "admin@example.com", Password: "secret"},
			email:    "admin@example.com",
			password: "secret",
		},
		{
			name:     "email is case-insensitive",
			config:   config.AdminConfig{Email: "admin@example.com", Password: "secret"},
			email:    " Admin@Example.com ",
			password: "secret",
		},
		{
			name:     "wrong password",
			config:   config.AdminConfig{Email: "admin@example.com", Password: "secret"},
			email:    "admin@example.com",
			password: "guess",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "wrong email",
			config:   config.AdminConfig{Email: "admin@example.com", Password: "secret"},
			email:    "root@example.com",
			password: "secret",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "bcrypt hash",
			config:   config.AdminConfig{Email: "admin@example.com", PasswordHash: string(hash)},
			email:    "admin@example.com",
			password: "hashed-secret",
		},
		{
			name:     "hash takes precedence over plain password",
			config:   config.AdminConfig{Email: "admin@example.com", Password: "secret", PasswordHash: string(hash)},
			email:    "admin@example.com",
			password: "secret",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "not configured",
			config:   config.AdminConfig{Email: "admin@example.com"},
			email:    "admin@example.com",
			password: "",
			wantErr:  ErrLoginDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAdminService(memory.New(), tt.config)
			err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdminService_Stats(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	user, _ := store.CreateUser(ctx, "alice", "alice@example.com", "hash")
	agent := &db.Agent{Name: "Helper", PricingTier: db.PricingBasic, ContextType: db.ContextPredefined, IsActive: true}
	_ = store.CreateAgent(ctx, agent)
	_ = store.CreateAgent(ctx, &db.Agent{Name: "Retired", PricingTier: db.PricingBasic, ContextType: db.ContextPredefined})
	_ = store.CreateSubscription(ctx, &db.Subscription{UserID: user.ID, AgentID: agent.ID, Tier: "basic", Status: db.StatusActive})
	conv := &db.Conversation{UserID: user.ID, AgentID: agent.ID, Title: "Chat with Helper"}
	_ = store.CreateConversation(ctx, conv)
	_ = store.AddMessage(ctx, &db.Message{ConversationID: conv.ID, Role: db.RoleUser, Content: "hi"})

	svc := NewAdminService(store, config.AdminConfig{})
	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	want := db.Stats{TotalUsers: 1, TotalConversations: 1, TotalMessages: 1, TotalAgents: 2, ActiveAgents: 1, ActiveSubscriptions: 1}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}

func TestAdminService_StatsError(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		GetStatsFunc: func(ctx context.Context) (*db.Stats, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewAdminService(mockDB, config.AdminConfig{})

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("Expected error, got nil")
	}
}
