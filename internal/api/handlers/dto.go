package handlers

import (
	"agent-market/internal/repository/db"
	"time"
)

type AgentData struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	PricingTier  string    `json:"pricing_tier"`
	ContextType  string    `json:"context_type"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	WebhookURL   *string   `json:"webhook_url"`
	Keywords     []string  `json:"keywords"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicAgentData is the marketplace view of an agent. Prompt and webhook
// stay private to admins.
type PublicAgentData struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PricingTier string   `json:"pricing_tier"`
	ContextType string   `json:"context_type"`
	Keywords    []string `json:"keywords"`
}

type SubscriptionData struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	AgentID   string           `json:"agent_id"`
	Tier      string           `json:"tier"`
	Status    string           `json:"status"`
	Agent     db.AgentSnapshot `json:"agent"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type ConversationData struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageData struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	Role           string         `json:"role"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	CreatedAt      time.Time      `json:"created_at"`
}

func toAgentData(a *db.Agent) AgentData {
	return AgentData{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		Category:     a.Category,
		PricingTier:  a.PricingTier,
		ContextType:  a.ContextType,
		SystemPrompt: a.SystemPrompt,
		WebhookURL:   a.WebhookURL,
		Keywords:     nonNil(a.Keywords),
		IsActive:     a.IsActive,
		CreatedBy:    a.CreatedBy,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toPublicAgentData(a *db.Agent) PublicAgentData {
	return PublicAgentData{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		PricingTier: a.PricingTier,
		ContextType: a.ContextType,
		Keywords:    nonNil(a.Keywords),
	}
}

func toSubscriptionData(s *db.Subscription) SubscriptionData {
	snapshot := s.Agent
	snapshot.Keywords = nonNil(snapshot.Keywords)
	return SubscriptionData{
		ID:        s.ID,
		UserID:    s.UserID,
		AgentID:   s.AgentID,
		Tier:      s.Tier,
		Status:    s.Status,
		Agent:     snapshot,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toConversationData(c *db.Conversation) ConversationData {
	return ConversationData{
		ID:        c.ID,
		UserID:    c.UserID,
		AgentID:   c.AgentID,
		AgentName: c.AgentName,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageData(m *db.Message) MessageData {
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return MessageData{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		Metadata:       metadata,
		CreatedAt:      m.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
