package db

import "time"

// Pricing tiers an agent can be listed under
const (
	PricingFree       = "free"
	PricingBasic      = "basic"
	PricingPremium    = "premium"
	PricingEnterprise = "enterprise"
)

// Context types describe where an agent gets its working context from
const (
	ContextUserProvided = "user_provided"
	ContextPredefined   = "predefined"
	ContextHybrid       = "hybrid"
)

// Subscription statuses
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// User represents a registered marketplace user
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Agent is a configurable persona users can subscribe to and chat with
type Agent struct {
	ID           string
	Name         string
	Description  string
	Category     string
	PricingTier  string
	ContextType  string
	SystemPrompt string
	WebhookURL   *string
	Keywords     []string
	IsActive     bool
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AgentSnapshot is the copy of an agent's display fields taken when a user
// subscribes. Later agent edits do not change it.
type AgentSnapshot struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	PricingTier string   `json:"pricing_tier"`
	Keywords    []string `json:"keywords"`
	IsActive    bool     `json:"is_active"`
}

// SnapshotOf captures the current display fields of an agent
func SnapshotOf(a *Agent) AgentSnapshot {
	keywords := make([]string, len(a.Keywords))
	copy(keywords, a.Keywords)
	return AgentSnapshot{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Category:    a.Category,
		PricingTier: a.PricingTier,
		Keywords:    keywords,
		IsActive:    a.IsActive,
	}
}

// Subscription grants a user access to an agent
type Subscription struct {
	ID        string
	UserID    string
	AgentID   string
	Tier      string
	Status    string
	Agent     AgentSnapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conversation is a message thread between one user and one agent
type Conversation struct {
	ID        string
	UserID    string
	AgentID   string
	AgentName string // resolved on read, not stored
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single append-only entry in a conversation
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// AgentFilter narrows agent listings
type AgentFilter struct {
	ActiveOnly bool
	Category   string
	Query      string // case-insensitive match on name, description or keyword
}

// Stats are the dashboard totals shown in the admin panel
type Stats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalConversations  int `json:"totalConversations"`
	TotalMessages       int `json:"totalMessages"`
	TotalAgents         int `json:"totalAgents"`
	ActiveAgents        int `json:"activeAgents"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
}
