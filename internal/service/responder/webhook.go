package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxWebhookReply caps how much of a webhook reply is read
const maxWebhookReply = 1 << 20

// ErrEmptyReply is returned when a provider answers with no text
var ErrEmptyReply = errors.New("empty reply")

// replyFields are the JSON fields accepted as the reply text, in order
var replyFields = []string{"response", "reply", "message", "content"}

// WebhookProvider forwards the message to the agent's own HTTP endpoint
type WebhookProvider struct {
	client *http.Client
}

type webhookPayload struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	AgentID        string `json:"agentId"`
	SystemPrompt   string `json:"systemPrompt"`
}

// NewWebhookProvider creates a provider with a traced HTTP client
func NewWebhookProvider(timeout time.Duration) *WebhookProvider {
	return NewWebhookProviderWithClient(&http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewWebhookProviderWithClient creates a provider around an existing client
func NewWebhookProviderWithClient(client *http.Client) *WebhookProvider {
	return &WebhookProvider{client: client}
}

func (p *WebhookProvider) Name() string { return "webhook" }

func (p *WebhookProvider) Respond(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.WebhookURL) == "" {
		return nil, ErrSkipped
	}

	body, err := json.Marshal(webhookPayload{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		AgentID:        req.AgentID,
		SystemPrompt:   req.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/plain")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error calling webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookReply))
	if err != nil {
		return nil, fmt.Errorf("error reading webhook reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	content, err := parseWebhookReply(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Content: content, Provider: p.Name()}, nil
}

// parseWebhookReply accepts a JSON object carrying one of replyFields, a JSON
// string, or a plain-text body. Other JSON values are rejected.
func parseWebhookReply(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrEmptyReply
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", fmt.Errorf("error decoding webhook reply: %w", err)
		}
		for _, field := range replyFields {
			if s, ok := obj[field].(string); ok && strings.TrimSpace(s) != "" {
				return s, nil
			}
		}
		return "", fmt.Errorf("webhook reply has none of %s", strings.Join(replyFields, ", "))
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("error decoding webhook reply: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return "", ErrEmptyReply
		}
		return s, nil
	default:
		if json.Valid(trimmed) {
			return "", fmt.Errorf("webhook reply is a JSON %s, not text", jsonKind(trimmed[0]))
		}
		return string(trimmed), nil
	}
}

func jsonKind(first byte) string {
	switch first {
	case '[':
		return "array"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
