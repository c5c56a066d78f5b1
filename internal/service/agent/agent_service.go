package agent

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/service"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// CreateAgentRequest contains the fields of a new agent
type CreateAgentRequest struct {
	Name         string
	Description  string
	Category     string
	PricingTier  string
	ContextType  string
	SystemPrompt string
	WebhookURL   string
	Keywords     []string
	IsActive     *bool // defaults to true
	CreatedBy    string
}

// UpdateAgentRequest carries a partial update; nil fields are left unchanged.
// An empty WebhookURL clears the webhook.
type UpdateAgentRequest struct {
	Name         *string
	Description  *string
	Category     *string
	PricingTier  *string
	ContextType  *string
	SystemPrompt *string
	WebhookURL   *string
	Keywords     *[]string
	IsActive     *bool
}

// AgentService manages the agent catalog
type AgentService struct {
	db        db.Database
	validator *validation.AgentRequestValidator
}

// NewAgentService creates a new AgentService
func NewAgentService(database db.Database) *AgentService {
	return &AgentService{
		db:        database,
		validator: validation.NewAgentRequestValidator(),
	}
}

// Create validates and stores a new agent
func (s *AgentService) Create(ctx context.Context, req CreateAgentRequest) (*db.Agent, error) {
	if req.PricingTier == "" {
		req.PricingTier = db.PricingBasic
	}
	if req.ContextType == "" {
		req.ContextType = db.ContextPredefined
	}
	keywords := validation.NormalizeKeywords(req.Keywords)
	webhook := strings.TrimSpace(req.WebhookURL)

	if err := s.validator.ValidateCreateAgentRequest(req.Name, req.PricingTier, req.ContextType, req.SystemPrompt, webhook, keywords); err != nil {
		return nil, service.Validation(err.Error())
	}

	agent := &db.Agent{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		PricingTier:  req.PricingTier,
		ContextType:  req.ContextType,
		SystemPrompt: req.SystemPrompt,
		Keywords:     keywords,
		IsActive:     req.IsActive == nil || *req.IsActive,
		CreatedBy:    req.CreatedBy,
	}
	if webhook != "" {
		agent.WebhookURL = &webhook
	}

	if err := s.db.CreateAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"agent_id": agent.ID,
		"name":     agent.Name,
	}).Info("Agent created")
	return agent, nil
}

// Get returns an agent by id
func (s *AgentService) Get(ctx context.Context, id string) (*db.Agent, error) {
	agent, err := s.db.GetAgent(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, service.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return agent, nil
}

// GetActive returns an agent only while it is listed in the marketplace
func (s *AgentService) GetActive(ctx context.Context, id string) (*db.Agent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !agent.IsActive {
		return nil, service.ErrAgentNotFound
	}
	return agent, nil
}

// List returns agents matching filter, newest first
func (s *AgentService) List(ctx context.Context, filter db.AgentFilter) ([]db.Agent, error) {
	agents, err := s.db.ListAgents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// Update applies a partial update
func (s *AgentService) Update(ctx context.Context, id string, req UpdateAgentRequest) (*db.Agent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := s.validator.ValidateName(*req.Name); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		agent.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		agent.Category = strings.TrimSpace(*req.Category)
	}
	if req.PricingTier != nil {
		if err := s.validator.ValidatePricingTier(*req.PricingTier); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.PricingTier = *req.PricingTier
	}
	if req.ContextType != nil {
		if err := s.validator.ValidateContextType(*req.ContextType); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.ContextType = *req.ContextType
	}
	if req.SystemPrompt != nil {
		if err := s.validator.ValidateSystemPrompt(*req.SystemPrompt); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.SystemPrompt = *req.SystemPrompt
	}
	if req.WebhookURL != nil {
		webhook := strings.TrimSpace(*req.WebhookURL)
		if err := s.validator.ValidateWebhookURL(webhook); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.WebhookURL = nil
		if webhook != "" {
			agent.WebhookURL = &webhook
		}
	}
	if req.Keywords != nil {
		keywords := validation.NormalizeKeywords(*req.Keywords)
		if err := s.validator.ValidateKeywords(keywords); err != nil {
			return nil, service.Validation(err.Error())
		}
		agent.Keywords = keywords
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}

	if err := s.db.UpdateAgent(ctx, agent); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, service.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}

	logger.FromContext(ctx).WithField("agent_id", agent.ID).Info("Agent updated")
	return agent, nil
}

// Delete soft-deletes an agent. Existing subscriptions and conversations keep
// referring to it.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	if err := s.db.DeactivateAgent(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return service.ErrAgentNotFound
		}
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	logger.FromContext(ctx).WithField("agent_id", id).Info("Agent deactivated")
	return nil
}
