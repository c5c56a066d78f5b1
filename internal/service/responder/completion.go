package responder

import (
	"agent-market/internal/service/llm"
	"context"
	"fmt"
	"strings"
)

// DefaultPersona is the system prompt for agents that define none
const DefaultPersona = "You are %s, a helpful AI assistant."

// CompletionProvider answers through a chat-completion API
type CompletionProvider struct {
	llm llm.LLMProvider
}

// NewCompletionProvider wraps an LLM provider
func NewCompletionProvider(provider llm.LLMProvider) *CompletionProvider {
	return &CompletionProvider{llm: provider}
}

func (p *CompletionProvider) Name() string { return "completion" }

func (p *CompletionProvider) Respond(ctx context.Context, req Request) (*Result, error) {
	if p.llm == nil || !p.llm.Enabled() {
		return nil, ErrSkipped
	}

	systemPrompt := strings.TrimSpace(req.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = fmt.Sprintf(DefaultPersona, displayName(req.AgentName))
	}

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	content, err := p.llm.ChatWithHistory(ctx, messages, systemPrompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyReply
	}
	return &Result{Content: content, Provider: p.Name()}, nil
}
