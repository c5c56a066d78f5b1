package handlers

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/app"
	"agent-market/internal/logger"
	chatService "agent-market/internal/service/chat"
	conversationService "agent-market/internal/service/conversation"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CreateConversationRequest struct {
	AgentID string `json:"agentId"`
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

// ChatHandlers serves conversations and their messages
type ChatHandlers struct {
	chatService         *chatService.ChatService
	conversationService *conversationService.ConversationService
}

// NewChatHandlers creates a new ChatHandlers
func NewChatHandlers(config *app.Config) *ChatHandlers {
	return &ChatHandlers{
		chatService:         chatService.NewChatService(config.DB, config),
		conversationService: conversationService.NewConversationService(config.DB),
	}
}

// CreateConversationHandler opens a conversation with a subscribed agent
func (ch *ChatHandlers) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req CreateConversationRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	conv, err := ch.conversationService.Create(r.Context(), id.UserID, req.AgentID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]any{"conversation": toConversationData(conv)})
}

// GetConversationsHandler returns the caller's conversations, most recently
// updated first
func (ch *ChatHandlers) GetConversationsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	conversations, err := ch.conversationService.List(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]ConversationData, 0, len(conversations))
	for i := range conversations {
		data = append(data, toConversationData(&conversations[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"conversations": data})
}

// GetConversationMessagesHandler returns the ordered history of a conversation
func (ch *ChatHandlers) GetConversationMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	messages, err := ch.conversationService.Messages(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]MessageData, 0, len(messages))
	for i := range messages {
		data = append(data, toMessageData(&messages[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"messages": data})
}

// PostMessageHandler appends the caller's message and returns the assistant reply
func (ch *ChatHandlers) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	convID := chi.URLParam(r, "id")

	var req PostMessageRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	logger.FromContext(r.Context()).WithFields(logrus.Fields{
		"conversation_id": convID,
		"message_chars":   len(req.Content),
	}).Debug("Post message request")

	reply, err := ch.chatService.PostMessage(r.Context(), id.UserID, convID, req.Content)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"message": toMessageData(reply)})
}
