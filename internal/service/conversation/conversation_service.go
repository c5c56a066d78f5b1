package conversation

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/service"
	"agent-market/internal/service/subscription"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ConversationService handles the business logic for conversation management
type ConversationService struct {
	db            db.Database
	subscriptions *subscription.SubscriptionService
	validator     *validation.ChatRequestValidator
}

// NewConversationService creates a new ConversationService
func NewConversationService(database db.Database) *ConversationService {
	return &ConversationService{
		db:            database,
		subscriptions: subscription.NewSubscriptionService(database),
		validator:     validation.NewChatRequestValidator(),
	}
}

// Create opens a conversation with an agent the user is actively subscribed to.
// The subscription is only checked here, never again for this conversation.
func (s *ConversationService) Create(ctx context.Context, userID, agentID string) (*db.Conversation, error) {
	agentID = strings.TrimSpace(agentID)
	if err := s.validator.ValidateConversationRequest(agentID); err != nil {
		return nil, service.Validation(err.Error())
	}

	sub, err := s.subscriptions.Get(ctx, userID, agentID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			logger.FromContext(ctx).WithField("agent_id", agentID).WithError(err).
				Error("Subscription lookup failed, refusing conversation")
		}
		return nil, service.ErrNotSubscribed
	}

	conv := &db.Conversation{
		UserID:  userID,
		AgentID: agentID,
		Title:   conversationTitle(sub.Agent.Name),
	}
	if err := s.db.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	conv.AgentName = sub.Agent.Name

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"agent_id":        agentID,
	}).Info("Conversation created")

	return conv, nil
}

// List retrieves all conversations for a user, most recently updated first
func (s *ConversationService) List(ctx context.Context, userID string) ([]db.Conversation, error) {
	conversations, err := s.db.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}
	return conversations, nil
}

// ListAll retrieves every conversation for the admin panel
func (s *ConversationService) ListAll(ctx context.Context) ([]db.Conversation, error) {
	conversations, err := s.db.ListAllConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversations: %w", err)
	}
	return conversations, nil
}

// Get returns a conversation the user owns
func (s *ConversationService) Get(ctx context.Context, userID, conversationID string) (*db.Conversation, error) {
	conv, err := s.db.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, service.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to retrieve conversation: %w", err)
	}
	if conv.UserID != userID {
		return nil, service.ErrNotOwner
	}
	return conv, nil
}

// Messages retrieves the ordered message history of a conversation the user owns
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string) ([]db.Message, error) {
	if _, err := s.Get(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	messages, err := s.db.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}
	return messages, nil
}

func conversationTitle(agentName string) string {
	if strings.TrimSpace(agentName) == "" {
		agentName = "Agent"
	}
	return "Chat with " + agentName
}
