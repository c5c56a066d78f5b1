package chat

import (
	"agent-market/internal/app"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/service"
	"agent-market/internal/service/llm"
	"agent-market/internal/service/responder"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Metadata keys stored on assistant messages
const (
	MetaAgentID     = "agent_id"
	MetaProvider    = "provider"
	MetaFallthrough = "fallthrough"
)

// Responder produces assistant replies
type Responder interface {
	Generate(ctx context.Context, req responder.Request) (*responder.Reply, error)
}

// ChatService handles the business logic for chat operations
type ChatService struct {
	db        db.Database
	config    *app.Config
	responder Responder
	validator *validation.ChatRequestValidator
	now       func() time.Time
}

// NewChatService creates a ChatService answering through the default chain:
// agent webhook, then chat completion, then canned fallback
func NewChatService(database db.Database, config *app.Config) *ChatService {
	llmProvider, err := llm.NewLLMProvider(context.Background(), &config.AppConfig.LLM)
	if err != nil {
		logger.Log.WithError(err).Warn("Invalid completion provider, using OpenRouter")
		llmProvider = llm.NewOpenRouterProvider(&config.AppConfig.LLM)
	}

	chain := responder.NewChain(
		responder.NewFallbackProvider(),
		responder.NewWebhookProvider(config.AppConfig.Webhook.Timeout),
		responder.NewCompletionProvider(llmProvider),
	)

	return NewChatServiceWithResponder(database, config, chain)
}

// NewChatServiceWithResponder creates a ChatService with a custom responder
func NewChatServiceWithResponder(database db.Database, config *app.Config, r Responder) *ChatService {
	return &ChatService{
		db:        database,
		config:    config,
		responder: r,
		validator: validation.NewChatRequestValidator(),
		now:       time.Now,
	}
}

// PostMessage appends the user's message, generates the assistant reply,
// appends it and touches the conversation. It returns the assistant message.
func (s *ChatService) PostMessage(ctx context.Context, userID, conversationID, content string) (*db.Message, error) {
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

	if strings.TrimSpace(content) == "" {
		return nil, service.ErrEmptyContent
	}
	if err := s.validator.ValidateMessage(content); err != nil {
		return nil, service.Validation(err.Error())
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"conversation_id": conv.ID,
		"agent_id":        conv.AgentID,
	})

	history, err := s.history(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	userMsg := &db.Message{
		ConversationID: conv.ID,
		Role:           db.RoleUser,
		Content:        content,
		Metadata:       map[string]any{},
		CreatedAt:      s.now(),
	}
	if err := s.db.AddMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	req := s.buildRequest(ctx, conv, content, history)
	reply, err := s.responder.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	metadata := map[string]any{
		MetaAgentID:  conv.AgentID,
		MetaProvider: reply.Provider,
	}
	if len(reply.Attempts) > 0 {
		metadata[MetaFallthrough] = reply.Attempts
	}

	assistantMsg := &db.Message{
		ConversationID: conv.ID,
		Role:           db.RoleAssistant,
		Content:        reply.Content,
		Metadata:       metadata,
		CreatedAt:      s.now(),
	}
	if !assistantMsg.CreatedAt.After(userMsg.CreatedAt) {
		assistantMsg.CreatedAt = userMsg.CreatedAt.Add(time.Microsecond)
	}
	if err := s.db.AddMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if err := s.db.TouchConversation(ctx, conv.ID, assistantMsg.CreatedAt); err != nil {
		log.WithError(err).Warn("Error updating conversation timestamp")
	}

	log.WithFields(logrus.Fields{
		"provider":    reply.Provider,
		"fallthrough": len(reply.Attempts),
	}).Info("Assistant reply stored")

	return assistantMsg, nil
}

// history returns at most HistoryLimit prior user and assistant messages,
// oldest first. A window that would open on an assistant reply drops it so the
// completion API always sees a user message first.
func (s *ChatService) history(ctx context.Context, conversationID string) ([]llm.Message, error) {
	messages, err := s.db.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversation history: %w", err)
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != db.RoleUser && m.Role != db.RoleAssistant {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	limit := s.config.AppConfig.LLM.HistoryLimit
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	for len(history) > 0 && history[0].Role != db.RoleUser {
		history = history[1:]
	}
	return history, nil
}

// buildRequest resolves the agent's response policy. A missing agent still
// gets a reply from whichever providers need no agent configuration.
func (s *ChatService) buildRequest(ctx context.Context, conv *db.Conversation, content string, history []llm.Message) responder.Request {
	req := responder.Request{
		ConversationID: conv.ID,
		AgentID:        conv.AgentID,
		AgentName:      conv.AgentName,
		Message:        content,
		History:        history,
	}

	agent, err := s.db.GetAgent(ctx, conv.AgentID)
	if err != nil {
		logger.FromContext(ctx).WithField("agent_id", conv.AgentID).WithError(err).
			Warn("Agent lookup failed, replying without agent configuration")
		return req
	}

	req.AgentName = agent.Name
	req.SystemPrompt = agent.SystemPrompt
	if agent.WebhookURL != nil {
		req.WebhookURL = *agent.WebhookURL
	}
	return req
}
