package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength bounds a single chat message, in characters
const MaxMessageLength = 16000

// ChatRequestValidator validates chat-related requests
type ChatRequestValidator struct{}

// NewChatRequestValidator creates a new ChatRequestValidator
func NewChatRequestValidator() *ChatRequestValidator {
	return &ChatRequestValidator{}
}

// ValidateMessage rejects empty and whitespace-only messages
func (v *ChatRequestValidator) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message cannot be empty")
	}
	if n := utf8.RuneCountInString(message); n > MaxMessageLength {
		return fmt.Errorf("message must be at most %d characters long, got %d", MaxMessageLength, n)
	}
	return nil
}

// ValidateConversationRequest validates a request to open a conversation
func (v *ChatRequestValidator) ValidateConversationRequest(agentID string) error {
	if strings.TrimSpace(agentID) == "" {
		return errors.New("agentId is required")
	}
	return nil
}
