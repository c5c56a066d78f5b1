package responder

import (
	"context"
	"fmt"
	"hash/fnv"
)

// fallbackTemplates take the agent name and the user message, in that order
var fallbackTemplates = []string{
	`Hello! I'm %s. I received your message: "%s". How can I help you today?`,
	`Thanks for reaching out! %s here. You wrote: "%s". Tell me more about what you need.`,
	`%s got your message: "%s". I'm answering in offline mode right now, but I'm happy to keep going.`,
}

// FallbackProvider answers with a canned acknowledgement. It never fails.
type FallbackProvider struct{}

// NewFallbackProvider creates the terminal provider of a chain
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

func (p *FallbackProvider) Name() string { return "fallback" }

func (p *FallbackProvider) Respond(_ context.Context, req Request) (*Result, error) {
	tmpl := fallbackTemplates[templateIndex(req.Message)]
	return &Result{
		Content:  fmt.Sprintf(tmpl, displayName(req.AgentName), req.Message),
		Provider: p.Name(),
	}, nil
}

// templateIndex picks a template deterministically from the message text
func templateIndex(message string) int {
	h := fnv.New32a()
	h.Write([]byte(message))
	return int(h.Sum32() % uint32(len(fallbackTemplates)))
}

func displayName(name string) string {
	if name == "" {
		return "Assistant"
	}
	return name
}
