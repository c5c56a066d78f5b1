package testutil

import (
	"agent-market/internal/app"
	"agent-market/internal/config"
	"agent-market/internal/repository/db"
	"agent-market/internal/service/llm"
	"context"
	"errors"
	"time"
)

// Ensure MockDatabase implements db.Database interface
var _ db.Database = (*MockDatabase)(nil)

// MockDatabase is a mock implementation of db.Database for testing
type MockDatabase struct {
	// User mocks
	CreateUserFunc        func(ctx context.Context, username, email, passwordHash string) (*db.User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*db.User, error)
	GetUserByIDFunc       func(ctx context.Context, id string) (*db.User, error)

	// Agent mocks
	CreateAgentFunc     func(ctx context.Context, agent *db.Agent) error
	GetAgentFunc        func(ctx context.Context, id string) (*db.Agent, error)
	ListAgentsFunc      func(ctx context.Context, filter db.AgentFilter) ([]db.Agent, error)
	UpdateAgentFunc     func(ctx context.Context, agent *db.Agent) error
	DeactivateAgentFunc func(ctx context.Context, id string) error

	// Subscription mocks
	CreateSubscriptionFunc       func(ctx context.Context, sub *db.Subscription) error
	GetActiveSubscriptionFunc    func(ctx context.Context, userID, agentID string) (*db.Subscription, error)
	ListActiveSubscriptionsFunc  func(ctx context.Context, userID string) ([]db.Subscription, error)
	UpdateSubscriptionStatusFunc func(ctx context.Context, id, status string) error

	// Conversation mocks
	CreateConversationFunc      func(ctx context.Context, conv *db.Conversation) error
	GetConversationFunc         func(ctx context.Context, id string) (*db.Conversation, error)
	ListConversationsByUserFunc func(ctx context.Context, userID string) ([]db.Conversation, error)
	ListAllConversationsFunc    func(ctx context.Context) ([]db.Conversation, error)
	TouchConversationFunc       func(ctx context.Context, id string, at time.Time) error

	// Message mocks
	AddMessageFunc   func(ctx context.Context, msg *db.Message) error
	ListMessagesFunc func(ctx context.Context, conversationID string) ([]db.Message, error)

	// Stats mocks
	GetStatsFunc func(ctx context.Context) (*db.Stats, error)
}

var errNotImplemented = errors.New("not implemented")

// User methods
func (m *MockDatabase) CreateUser(ctx context.Context, username, email, passwordHash string) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, username, email, passwordHash)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) GetUserByUsername(ctx context.Context, username string) (*db.User, error) {
	if m.GetUserByUsernameFunc != nil {
		return m.GetUserByUsernameFunc(ctx, username)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) GetUserByID(ctx context.Context, id string) (*db.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return nil, errNotImplemented
}

// Agent methods
func (m *MockDatabase) CreateAgent(ctx context.Context, agent *db.Agent) error {
	if m.CreateAgentFunc != nil {
		return m.CreateAgentFunc(ctx, agent)
	}
	return errNotImplemented
}

func (m *MockDatabase) GetAgent(ctx context.Context, id string) (*db.Agent, error) {
	if m.GetAgentFunc != nil {
		return m.GetAgentFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) ListAgents(ctx context.Context, filter db.AgentFilter) ([]db.Agent, error) {
	if m.ListAgentsFunc != nil {
		return m.ListAgentsFunc(ctx, filter)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) UpdateAgent(ctx context.Context, agent *db.Agent) error {
	if m.UpdateAgentFunc != nil {
		return m.UpdateAgentFunc(ctx, agent)
	}
	return errNotImplemented
}

func (m *MockDatabase) DeactivateAgent(ctx context.Context, id string) error {
	if m.DeactivateAgentFunc != nil {
		return m.DeactivateAgentFunc(ctx, id)
	}
	return errNotImplemented
}

// Subscription methods
func (m *MockDatabase) CreateSubscription(ctx context.Context, sub *db.Subscription) error {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, sub)
	}
	return errNotImplemented
}

func (m *MockDatabase) GetActiveSubscription(ctx context.Context, userID, agentID string) (*db.Subscription, error) {
	if m.GetActiveSubscriptionFunc != nil {
		return m.GetActiveSubscriptionFunc(ctx, userID, agentID)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) ListActiveSubscriptions(ctx context.Context, userID string) ([]db.Subscription, error) {
	if m.ListActiveSubscriptionsFunc != nil {
		return m.ListActiveSubscriptionsFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) UpdateSubscriptionStatus(ctx context.Context, id, status string) error {
	if m.UpdateSubscriptionStatusFunc != nil {
		return m.UpdateSubscriptionStatusFunc(ctx, id, status)
	}
	return errNotImplemented
}

// Conversation methods
func (m *MockDatabase) CreateConversation(ctx context.Context, conv *db.Conversation) error {
	if m.CreateConversationFunc != nil {
		return m.CreateConversationFunc(ctx, conv)
	}
	return errNotImplemented
}

func (m *MockDatabase) GetConversation(ctx context.Context, id string) (*db.Conversation, error) {
	if m.GetConversationFunc != nil {
		return m.GetConversationFunc(ctx, id)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) ListConversationsByUser(ctx context.Context, userID string) ([]db.Conversation, error) {
	if m.ListConversationsByUserFunc != nil {
		return m.ListConversationsByUserFunc(ctx, userID)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) ListAllConversations(ctx context.Context) ([]db.Conversation, error) {
	if m.ListAllConversationsFunc != nil {
		return m.ListAllConversationsFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) TouchConversation(ctx context.Context, id string, at time.Time) error {
	if m.TouchConversationFunc != nil {
		return m.TouchConversationFunc(ctx, id, at)
	}
	return errNotImplemented
}

// Message methods
func (m *MockDatabase) AddMessage(ctx context.Context, msg *db.Message) error {
	if m.AddMessageFunc != nil {
		return m.AddMessageFunc(ctx, msg)
	}
	return errNotImplemented
}

func (m *MockDatabase) ListMessages(ctx context.Context, conversationID string) ([]db.Message, error) {
	if m.ListMessagesFunc != nil {
		return m.ListMessagesFunc(ctx, conversationID)
	}
	return nil, errNotImplemented
}

// Stats methods
func (m *MockDatabase) GetStats(ctx context.Context) (*db.Stats, error) {
	if m.GetStatsFunc != nil {
		return m.GetStatsFunc(ctx)
	}
	return nil, errNotImplemented
}

func (m *MockDatabase) Close() error {
	return nil
}

// Ensure MockLLMProvider implements llm.LLMProvider interface
var _ llm.LLMProvider = (*MockLLMProvider)(nil)

// MockLLMProvider is a mock implementation of llm.LLMProvider for testing
type MockLLMProvider struct {
	ChatWithHistoryFunc func(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error)
	Disabled            bool
}

func (m *MockLLMProvider) ChatWithHistory(ctx context.Context, messages []llm.Message, systemPrompt string) (string, error) {
	if m.ChatWithHistoryFunc != nil {
		return m.ChatWithHistoryFunc(ctx, messages, systemPrompt)
	}
	return "", errNotImplemented
}

func (m *MockLLMProvider) Enabled() bool {
	return !m.Disabled
}

func (m *MockLLMProvider) GetDefaultModel() string {
	return "default-model"
}

// NewMockConfig creates a mock app.Config for testing. The completion API key
// is empty so chains built from it answer with the fallback provider.
func NewMockConfig(database db.Database) *app.Config {
	return app.NewConfig(database, &config.AppConfig{
		Database: config.DatabaseConfig{Driver: "memory"},
		LLM: config.LLMConfig{
			Model:               "test-model",
			DefaultSystemPrompt: "You are a helpful assistant.",
			Temperature:         0.7,
			HistoryLimit:        20,
		},
		Webhook: config.WebhookConfig{Timeout: 2 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret:       []byte("test-secret-test-secret-test-secret!"),
			TokenExpiration: time.Hour,
		},
		Admin: config.AdminConfig{
			Email:    "admin@agentmarket.local",
			Password: "admin-password",
		},
	})
}
