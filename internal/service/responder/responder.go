// Package responder produces the assistant side of a conversation. Providers
// are tried in priority order; the first one configured for the request
// answers, and the terminal fallback covers anything that failed.
package responder

import (
	"agent-market/internal/logger"
	"agent-market/internal/service/llm"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrSkipped is returned by a provider that is not configured for a request
var ErrSkipped = errors.New("provider not configured")

// Request carries everything a provider may need to answer
type Request struct {
	ConversationID string
	AgentID        string
	AgentName      string
	SystemPrompt   string
	WebhookURL     string
	Message        string
	History        []llm.Message // prior turns, oldest first, excluding Message
}

// Result is a provider's answer
type Result struct {
	Content  string
	Provider string
}

// Provider is one response strategy
type Provider interface {
	Name() string
	Respond(ctx context.Context, req Request) (*Result, error)
}

// Outcome of a provider that did not produce the reply
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Attempt records a provider the chain moved past
type Attempt struct {
	Provider string  `json:"provider"`
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason,omitempty"`
}

// Reply is the chain's answer together with the providers it passed over
type Reply struct {
	Result
	Attempts []Attempt
}

// Chain walks primary providers in order. Skipped providers pass to the next
// one; the first configured provider that fails hands over to the fallback.
type Chain struct {
	primary  []Provider
	fallback Provider
	tracer   trace.Tracer
}

// NewChain creates a chain ending in fallback
func NewChain(fallback Provider, primary ...Provider) *Chain {
	return &Chain{
		primary:  primary,
		fallback: fallback,
		tracer:   otel.Tracer("agent-market/responder"),
	}
}

// Generate returns the first successful provider result
func (c *Chain) Generate(ctx context.Context, req Request) (*Reply, error) {
	attempts := make([]Attempt, 0, len(c.primary))

	for _, p := range c.primary {
		res, err := c.call(ctx, p, req)
		if err == nil {
			return &Reply{Result: *res, Attempts: attempts}, nil
		}
		if errors.Is(err, ErrSkipped) {
			attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: OutcomeSkipped})
			continue
		}

		logger.FromContext(ctx).WithFields(logrus.Fields{
			"provider":        p.Name(),
			"agent_id":        req.AgentID,
			"conversation_id": req.ConversationID,
		}).WithError(err).Warn("Response provider failed, using fallback")
		attempts = append(attempts, Attempt{Provider: p.Name(), Outcome: OutcomeFailed, Reason: err.Error()})
		break
	}

	res, err := c.call(ctx, c.fallback, req)
	if err != nil {
		return nil, fmt.Errorf("fallback provider failed: %w", err)
	}
	return &Reply{Result: *res, Attempts: attempts}, nil
}

func (c *Chain) call(ctx context.Context, p Provider, req Request) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "responder."+p.Name(), trace.WithAttributes(
		attribute.String("agent.id", req.AgentID),
		attribute.String("conversation.id", req.ConversationID),
	))
	defer span.End()

	start := time.Now()
	res, err := p.Respond(ctx, req)
	if err == nil && res == nil {
		err = ErrEmptyReply
	}
	span.SetAttributes(attribute.Int64("responder.latency_ms", time.Since(start).Milliseconds()))

	switch {
	case errors.Is(err, ErrSkipped):
		span.SetAttributes(attribute.String("responder.outcome", string(OutcomeSkipped)))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("responder.outcome", string(OutcomeFailed)))
	default:
		if res.Provider == "" {
			res.Provider = p.Name()
		}
		span.SetAttributes(attribute.String("responder.outcome", "succeeded"))
	}
	return res, err
}
