package llm

import (
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go"
	"github.com/sirupsen/logrus"
)

// genkitProviderName is the compat_oai provider prefix for model names
const genkitProviderName = "openrouter"

// GenerateFunc runs one generation and returns the reply text
type GenerateFunc func(ctx context.Context, model string, messages []*ai.Message, params *openai.ChatCompletionNewParams) (string, error)

// GenkitProvider implements LLMProvider using Firebase Genkit with an
// OpenAI-compatible endpoint via compat_oai
type GenkitProvider struct {
	config   *config.LLMConfig
	generate GenerateFunc
}

// NewGenkitProvider initializes Genkit against the configured base URL.
// Without an API key the provider is returned disabled and Genkit is not started.
func NewGenkitProvider(ctx context.Context, llmConfig *config.LLMConfig) *GenkitProvider {
	if llmConfig.APIKey == "" {
		return NewGenkitProviderWithGenerate(llmConfig, nil)
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&compat_oai.OpenAICompatible{
			Provider: genkitProviderName,
			APIKey:   llmConfig.APIKey,
			BaseURL:  llmConfig.BaseURL,
		}),
		genkit.WithDefaultModel(genkitModelName(llmConfig.Model)),
	)

	logger.Log.WithFields(logrus.Fields{
		"default_model": llmConfig.Model,
		"base_url":      llmConfig.BaseURL,
	}).Info("Initialized Genkit completion provider")

	generate := func(ctx context.Context, model string, messages []*ai.Message, params *openai.ChatCompletionNewParams) (string, error) {
		resp, err := genkit.Generate(ctx, g,
			ai.WithMessages(messages...),
			ai.WithModelName(model),
			ai.WithConfig(params),
		)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}

	return NewGenkitProviderWithGenerate(llmConfig, generate)
}

// NewGenkitProviderWithGenerate creates a provider around an existing generate function
func NewGenkitProviderWithGenerate(llmConfig *config.LLMConfig, generate GenerateFunc) *GenkitProvider {
	return &GenkitProvider{
		config:   llmConfig,
		generate: generate,
	}
}

// Enabled reports whether an API key is configured and Genkit is running
func (p *GenkitProvider) Enabled() bool {
	return p.config.APIKey != "" && p.generate != nil
}

// GetDefaultModel returns the configured model
func (p *GenkitProvider) GetDefaultModel() string {
	return p.config.Model
}

// ChatWithHistory sends a chat request with conversation history and returns the full response
func (p *GenkitProvider) ChatWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	if !p.Enabled() {
		return "", ErrNotConfigured
	}

	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = p.config.DefaultSystemPrompt
	}

	model := genkitModelName(p.config.Model)
	logger.FromContext(ctx).WithFields(logrus.Fields{
		"model":         model,
		"message_count": len(messages),
		"prompt_length": len(systemPrompt),
	}).Info("Calling Genkit")

	params := &openai.ChatCompletionNewParams{
		Temperature: openai.Float(p.config.Temperature),
	}

	start := time.Now()
	text, err := p.generate(ctx, model, buildGenkitMessages(messages, systemPrompt), params)
	if err != nil {
		return "", fmt.Errorf("genkit generation failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"model":      model,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("Genkit completion received")

	return text, nil
}

// buildGenkitMessages prepends the system message and converts to Genkit parts
func buildGenkitMessages(messages []Message, systemPrompt string) []*ai.Message {
	out := make([]*ai.Message, 0, len(messages)+1)
	out = append(out, ai.NewSystemTextMessage(systemPrompt))
	for _, m := range messages {
		out = append(out, &ai.Message{
			Role:    genkitRole(m.Role),
			Content: []*ai.Part{ai.NewTextPart(m.Content)},
		})
	}
	return out
}

// genkitRole maps stored message roles to Genkit roles; assistant is "model" there
func genkitRole(role string) ai.Role {
	switch role {
	case "assistant":
		return ai.RoleModel
	case "system":
		return ai.RoleSystem
	default:
		return ai.RoleUser
	}
}

// genkitModelName ensures the model carries the compat_oai provider prefix
func genkitModelName(model string) string {
	prefix := genkitProviderName + "/"
	if strings.HasPrefix(model, prefix) {
		return model
	}
	return prefix + model
}
