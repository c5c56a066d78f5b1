package llm

import (
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"context"
	"fmt"
)

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGenkit     ProviderType = "genkit"
)

// ParseProviderType parses a string into a ProviderType; empty means OpenRouter
func ParseProviderType(s string) (ProviderType, error) {
	switch s {
	case "openrouter", "":
		return ProviderOpenRouter, nil
	case "genkit":
		return ProviderGenkit, nil
	default:
		return "", fmt.Errorf("unknown provider type: %s", s)
	}
}

// NewLLMProvider creates the completion provider selected by LLM_PROVIDER
func NewLLMProvider(ctx context.Context, llmConfig *config.LLMConfig) (LLMProvider, error) {
	providerType, err := ParseProviderType(llmConfig.Provider)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("provider", providerType).Info("Creating completion provider")
	switch providerType {
	case ProviderGenkit:
		return NewGenkitProvider(ctx, llmConfig), nil
	default:
		return NewOpenRouterProvider(llmConfig), nil
	}
}
