package db

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrAlreadySubscribed is returned when an active subscription already
	// exists for the (user, agent) pair
	ErrAlreadySubscribed = errors.New("active subscription already exists")
	// ErrUsernameTaken is returned when registering a duplicate username
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository stores registered users
type UserRepository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// AgentRepository stores the agent catalog
type AgentRepository interface {
	CreateAgent(ctx context.Context, agent *Agent) error
	GetAgent(ctx context.Context, id string) (*Agent, error)
	// ListAgents returns agents newest first
	ListAgents(ctx context.Context, filter AgentFilter) ([]Agent, error)
	UpdateAgent(ctx context.Context, agent *Agent) error
	// DeactivateAgent soft-deletes an agent
	DeactivateAgent(ctx context.Context, id string) error
}

// SubscriptionRepository stores subscriptions. CreateSubscription must be
// atomic with respect to the one-active-subscription-per-pair rule.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetActiveSubscription(ctx context.Context, userID, agentID string) (*Subscription, error)
	// ListActiveSubscriptions returns the user's active subscriptions newest first
	ListActiveSubscriptions(ctx context.Context, userID string) ([]Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id, status string) error
}

// ConversationRepository stores conversation headers
type ConversationRepository interface {
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	// ListConversationsByUser returns conversations most recently updated first
	ListConversationsByUser(ctx context.Context, userID string) ([]Conversation, error)
	// ListAllConversations returns every conversation most recently updated first
	ListAllConversations(ctx context.Context) ([]Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error
}

// MessageRepository stores conversation messages
type MessageRepository interface {
	// AddMessage appends msg, filling ID and CreatedAt when empty
	AddMessage(ctx context.Context, msg *Message) error
	// ListMessages returns messages ordered by created_at, then insertion order
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
}

// StatsRepository aggregates dashboard totals
type StatsRepository interface {
	GetStats(ctx context.Context) (*Stats, error)
}

// Database groups every repository behind one handle
type Database interface {
	UserRepository
	AgentRepository
	SubscriptionRepository
	ConversationRepository
	MessageRepository
	StatsRepository
	Close() error
}
