package llm

import (
	"agent-market/internal/config"
	"agent-market/internal/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("LLM_API_KEY not configured")

// ErrEmptyCompletion is returned when the provider answers with no content
var ErrEmptyCompletion = errors.New("completion returned no content")

// OpenRouterProvider implements LLMProvider on any OpenAI-compatible endpoint,
// OpenRouter by default
type OpenRouterProvider struct {
	config *config.LLMConfig
	client ChatClient
}

// NewOpenRouterProvider creates a provider backed by a go-openai client
func NewOpenRouterProvider(llmConfig *config.LLMConfig) *OpenRouterProvider {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	clientConfig.BaseURL = llmConfig.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 120 * time.Second,
		Transport: &attributionTransport{
			referer: llmConfig.Referer,
			title:   llmConfig.Title,
			next:    otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	return NewOpenRouterProviderWithClient(llmConfig, openai.NewClientWithConfig(clientConfig))
}

// NewOpenRouterProviderWithClient creates a provider around an existing client
func NewOpenRouterProviderWithClient(llmConfig *config.LLMConfig, client ChatClient) *OpenRouterProvider {
	return &OpenRouterProvider{
		config: llmConfig,
		client: client,
	}
}

// Enabled reports whether an API key is configured
func (p *OpenRouterProvider) Enabled() bool {
	return p.config.APIKey != ""
}

// GetDefaultModel returns the configured model
func (p *OpenRouterProvider) GetDefaultModel() string {
	return p.config.Model
}

// ChatWithHistory sends a chat request with conversation history and returns the full response
func (p *OpenRouterProvider) ChatWithHistory(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	if !p.Enabled() {
		return "", ErrNotConfigured
	}

	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = p.config.DefaultSystemPrompt
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"model":         p.config.Model,
		"message_count": len(messages),
		"prompt_length": len(systemPrompt),
	}).Info("Calling chat completion API")

	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    buildMessages(messages, systemPrompt),
		Temperature: float32(p.config.Temperature),
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error calling completion API: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"model":             resp.Model,
		"generation_id":     resp.ID,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"latency_ms":        time.Since(start).Milliseconds(),
	}).Info("Chat completion received")

	return resp.Choices[0].Message.Content, nil
}

// buildMessages prepends the system message to the conversation history
func buildMessages(messages []Message, systemPrompt string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// attributionTransport adds the OpenRouter app attribution headers
type attributionTransport struct {
	referer string
	title   string
	next    http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.next.RoundTrip(req)
}
