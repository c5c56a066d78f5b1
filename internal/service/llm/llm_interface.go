package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Message is a single chat turn sent to a completion provider
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMProvider defines the interface for chat-completion providers
type LLMProvider interface {
	// ChatWithHistory sends the history prefixed by systemPrompt and returns the reply text
	ChatWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error)

	// Enabled reports whether the provider has credentials to make calls
	Enabled() bool

	// GetDefaultModel returns the default model for this provider
	GetDefaultModel() string
}

// ChatClient is the subset of *openai.Client the providers use
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}
