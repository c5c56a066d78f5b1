package agent

import (
	"agent-market/internal/repository/db"
	"agent-market/internal/repository/memory"
	"agent-market/internal/service"
	"agent-market/internal/testutil"
	"context"
	"errors"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validCreate() CreateAgentRequest {
	return CreateAgentRequest{
		Name:         " Code Reviewer ",
		Description:  "Reviews pull requests",
		Category:     "Development",
		PricingTier:  db.PricingPremium,
		ContextType:  db.ContextUserProvided,
		SystemPrompt: "You review code.",
		Keywords:     []string{"Code", "review", "code"},
		CreatedBy:    "admin",
	}
}

func TestAgentService_Create(t *testing.T) {
	svc := NewAgentService(memory.New())

	agent, err := svc.Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if agent.ID == "" {
		t.Error("Expected ID to be assigned")
	}
	if agent.Name != "Code Reviewer" {
		t.Errorf("Expected trimmed name, got %q", agent.Name)
	}
	if !agent.IsActive {
		t.Error("Expected new agent to be active by default")
	}
	if !reflect.DeepEqual(agent.Keywords, []string{"code", "review"}) {
		t.Errorf("Expected normalized keywords, got %v", agent.Keywords)
	}
	if agent.WebhookURL != nil {
		t.Errorf("Expected no webhook, got %v", *agent.WebhookURL)
	}
}

func TestAgentService_CreateDefaultsAndInactive(t *testing.T) {
	svc := NewAgentService(memory.New())

	agent, err := svc.Create(context.Background(), CreateAgentRequest{
		Name:       "Echo",
		WebhookURL: "https://hooks.example.com/echo",
		IsActive:   boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if agent.PricingTier != db.PricingBasic || agent.ContextType != db.ContextPredefined {
		t.Errorf("Expected defaults basic/predefined, got %s/%s", agent.PricingTier, agent.ContextType)
	}
	if agent.IsActive {
		t.Error("Expected agent to be inactive")
	}
	if agent.WebhookURL == nil || *agent.WebhookURL != "https://hooks.example.com/echo" {
		t.Errorf("Expected webhook to be stored, got %v", agent.WebhookURL)
	}
}

func TestAgentService_CreateValidation(t *testing.T) {
	svc := NewAgentService(memory.New())

	tests := []struct {
		name   string
		mutate func(r *CreateAgentRequest)
	}{
		{"missing name", func(r *CreateAgentRequest) { r.Name = "" }},
		{"bad tier", func(r *CreateAgentRequest) { r.PricingTier = "gold" }},
		{"bad context type", func(r *CreateAgentRequest) { r.ContextType = "shared" }},
		{"bad webhook", func(r *CreateAgentRequest) { r.WebhookURL = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, service.ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAgentService_Update(t *testing.T) {
	svc := NewAgentService(memory.New())
	ctx := context.Background()

	req := validCreate()
	req.WebhookURL = "https://hooks.example.com/a"
	agent, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, agent.ID, UpdateAgentRequest{
		Description: strPtr("New description"),
		WebhookURL:  strPtr(""),
		IsActive:    boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Code Reviewer" {
		t.Errorf("Expected untouched name, got %q", updated.Name)
	}
	if updated.Description != "New description" {
		t.Errorf("Expected new description, got %q", updated.Description)
	}
	if updated.WebhookURL != nil {
		t.Error("Expected empty webhook string to clear the webhook")
	}
	if updated.IsActive {
		t.Error("Expected agent to be toggled inactive")
	}

	stored, _ := svc.Get(ctx, agent.ID)
	if stored.IsActive || stored.Description != "New description" {
		t.Errorf("Update not persisted: %+v", stored)
	}
}

func TestAgentService_UpdateErrors(t *testing.T) {
	svc := NewAgentService(memory.New())
	ctx := context.Background()
	agent, _ := svc.Create(ctx, validCreate())

	if _, err := svc.Update(ctx, "missing", UpdateAgentRequest{Name: strPtr("x")}); !errors.Is(err, service.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, agent.ID, UpdateAgentRequest{Name: strPtr("  ")}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("Expected ErrValidation for blank name, got %v", err)
	}
	if _, err := svc.Update(ctx, agent.ID, UpdateAgentRequest{PricingTier: strPtr("gold")}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("Expected ErrValidation for bad tier, got %v", err)
	}
	if _, err := svc.Update(ctx, agent.ID, UpdateAgentRequest{WebhookURL: strPtr("ftp://x")}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("Expected ErrValidation for bad webhook, got %v", err)
	}
}

func TestAgentService_DeleteIsSoft(t *testing.T) {
	svc := NewAgentService(memory.New())
	ctx := context.Background()
	agent, _ := svc.Create(ctx, validCreate())

	if err := svc.Delete(ctx, agent.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	stored, err := svc.Get(ctx, agent.ID)
	if err != nil {
		t.Fatalf("Expected agent to remain readable after delete, got %v", err)
	}
	if stored.IsActive {
		t.Error("Expected agent to be inactive after delete")
	}
	if _, err := svc.GetActive(ctx, agent.ID); !errors.Is(err, service.ErrAgentNotFound) {
		t.Errorf("Expected GetActive to hide deleted agent, got %v", err)
	}

	active, _ := svc.List(ctx, db.AgentFilter{ActiveOnly: true})
	if len(active) != 0 {
		t.Errorf("Expected no active agents, got %d", len(active))
	}

	if err := svc.Delete(ctx, "missing"); !errors.Is(err, service.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound, got %v", err)
	}
}

func TestAgentService_ListError(t *testing.T) {
	mockDB := &testutil.MockDatabase{
		ListAgentsFunc: func(ctx context.Context, filter db.AgentFilter) ([]db.Agent, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewAgentService(mockDB)

	if _, err := svc.List(context.Background(), db.AgentFilter{}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}
