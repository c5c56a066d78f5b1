package validation

import (
	"reflect"
	"strings"
	"testing"
)

func TestAgentRequestValidator_ValidateCreateAgentRequest(t *testing.T) {
	validator := NewAgentRequestValidator()

	tests := []struct {
		name        string
		agentName   string
		pricingTier string
		contextType string
		prompt      string
		webhookURL  string
		keywords    []string
		wantErr     bool
		errContains string
	}{
		{
			name:        "valid request",
			agentName:   "Code Reviewer",
			pricingTier: "basic",
			contextType: "user_provided",
			prompt:      "You review code.",
			keywords:    []string{"code"},
		},
		{
			name:        "valid with webhook",
			agentName:   "Echo",
			pricingTier: "free",
			contextType: "hybrid",
			webhookURL:  "https://hooks.example.com/echo",
		},
		{
			name:        "blank name",
			agentName:   "   ",
			pricingTier: "basic",
			contextType: "predefined",
			wantErr:     true,
			errContains: "name cannot be empty",
		},
		{
			name:        "long name",
			agentName:   strings.Repeat("x", 101),
			pricingTier: "basic",
			contextType: "predefined",
			wantErr:     true,
			errContains: "at most 100",
		},
		{
			name:        "bad pricing tier",
			agentName:   "A",
			pricingTier: "gold",
			contextType: "predefined",
			wantErr:     true,
			errContains: "pricing_tier",
		},
		{
			name:        "bad context type",
			agentName:   "A",
			pricingTier: "basic",
			contextType: "global",
			wantErr:     true,
			errContains: "context_type",
		},
		{
			name:        "non-http webhook",
			agentName:   "A",
			pricingTier: "basic",
			contextType: "predefined",
			webhookURL:  "ftp://example.com/hook",
			wantErr:     true,
			errContains: "http or https",
		},
		{
			name:        "webhook without host",
			agentName:   "A",
			pricingTier: "basic",
			contextType: "predefined",
			webhookURL:  "https:///path",
			wantErr:     true,
			errContains: "host",
		},
		{
			name:        "empty keyword",
			agentName:   "A",
			pricingTier: "basic",
			contextType: "predefined",
			keywords:    []string{"ok", " "},
			wantErr:     true,
			errContains: "empty",
		},
		{
			name:        "system prompt too long",
			agentName:   "A",
			pricingTier: "basic",
			contextType: "predefined",
			prompt:      strings.Repeat("p", 8001),
			wantErr:     true,
			errContains: "system_prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateCreateAgentRequest(tt.agentName, tt.pricingTier, tt.contextType, tt.prompt, tt.webhookURL, tt.keywords)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCreateAgentRequest() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateCreateAgentRequest() error = %q, want it to contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestAgentRequestValidator_ValidateKeywordsLimit(t *testing.T) {
	validator := NewAgentRequestValidator()

	keywords := make([]string, 21)
	for i := range keywords {
		keywords[i] = "k"
	}
	if err := validator.ValidateKeywords(keywords); err == nil {
		t.Error("ValidateKeywords() error = nil, want error for 21 keywords")
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" Code ", "review", "CODE", "", "Review", "go"})
	want := []string{"code", "review", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeKeywords() = %v, want %v", got, want)
	}

	if got := NormalizeKeywords(nil); got == nil || len(got) != 0 {
		t.Errorf("NormalizeKeywords(nil) = %v, want empty non-nil slice", got)
	}
}
