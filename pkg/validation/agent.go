package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// PricingTiers are the tiers an agent can be listed under
var PricingTiers = []string{"free", "basic", "premium", "enterprise"}

// ContextTypes describe where an agent gets its working context from
var ContextTypes = []string{"user_provided", "predefined", "hybrid"}

const (
	maxAgentNameLength   = 100
	maxKeywords          = 20
	maxKeywordLength     = 50
	maxSystemPromptChars = 8000
)

// AgentRequestValidator validates agent create and update requests
type AgentRequestValidator struct{}

// NewAgentRequestValidator creates a new AgentRequestValidator
func NewAgentRequestValidator() *AgentRequestValidator {
	return &AgentRequestValidator{}
}

// ValidateName validates an agent display name
func (v *AgentRequestValidator) ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > maxAgentNameLength {
		return fmt.Errorf("name must be at most %d characters long, got %d", maxAgentNameLength, n)
	}
	return nil
}

// ValidatePricingTier validates an agent pricing tier
func (v *AgentRequestValidator) ValidatePricingTier(tier string) error {
	if !oneOf(tier, PricingTiers) {
		return fmt.Errorf("pricing_tier must be one of: %s; got %s", strings.Join(PricingTiers, ", "), tier)
	}
	return nil
}

// ValidateContextType validates an agent context type
func (v *AgentRequestValidator) ValidateContextType(contextType string) error {
	if !oneOf(contextType, ContextTypes) {
		return fmt.Errorf("context_type must be one of: %s; got %s", strings.Join(ContextTypes, ", "), contextType)
	}
	return nil
}

// ValidateSystemPrompt bounds the system prompt length
func (v *AgentRequestValidator) ValidateSystemPrompt(prompt string) error {
	if n := utf8.RuneCountInString(prompt); n > maxSystemPromptChars {
		return fmt.Errorf("system_prompt must be at most %d characters long, got %d", maxSystemPromptChars, n)
	}
	return nil
}

// ValidateWebhookURL accepts an empty value or an absolute http(s) URL
func (v *AgentRequestValidator) ValidateWebhookURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("webhook_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("webhook_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("webhook_url must include a host")
	}
	return nil
}

// ValidateKeywords bounds the keyword set
func (v *AgentRequestValidator) ValidateKeywords(keywords []string) error {
	if len(keywords) > maxKeywords {
		return fmt.Errorf("at most %d keywords are allowed, got %d", maxKeywords, len(keywords))
	}
	for _, k := range keywords {
		if strings.TrimSpace(k) == "" {
			return errors.New("keywords cannot contain empty values")
		}
		if n := utf8.RuneCountInString(k); n > maxKeywordLength {
			return fmt.Errorf("keyword %q must be at most %d characters long", k, maxKeywordLength)
		}
	}
	return nil
}

// ValidateCreateAgentRequest validates every field of a new agent
func (v *AgentRequestValidator) ValidateCreateAgentRequest(name, pricingTier, contextType, systemPrompt, webhookURL string, keywords []string) error {
	if err := v.ValidateName(name); err != nil {
		return err
	}
	if err := v.ValidatePricingTier(pricingTier); err != nil {
		return err
	}
	if err := v.ValidateContextType(contextType); err != nil {
		return err
	}
	if err := v.ValidateSystemPrompt(systemPrompt); err != nil {
		return err
	}
	if err := v.ValidateWebhookURL(webhookURL); err != nil {
		return err
	}
	return v.ValidateKeywords(keywords)
}

// NormalizeKeywords trims, lowercases and de-duplicates keywords, keeping
// first-seen order
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
