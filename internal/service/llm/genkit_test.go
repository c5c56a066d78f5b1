package llm

import (
	"agent-market/internal/config"
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/openai/openai-go"
)

func TestGenkitChatWithHistory_BuildsMessages(t *testing.T) {
	var gotModel string
	var gotMessages []*ai.Message
	var gotParams *openai.ChatCompletionNewParams
	generate := func(ctx context.Context, model string, messages []*ai.Message, params *openai.ChatCompletionNewParams) (string, error) {
		gotModel = model
		gotMessages = messages
		gotParams = params
		return "hello from genkit", nil
	}
	provider := NewGenkitProviderWithGenerate(testLLMConfig(), generate)

	history := []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "answer"},
		{Role: "user", Content: "second"},
	}
	got, err := provider.ChatWithHistory(context.Background(), history, "You are Reviewer.")
	if err != nil {
		t.Fatalf("ChatWithHistory() error = %v", err)
	}
	if got != "hello from genkit" {
		t.Errorf("ChatWithHistory() = %q", got)
	}
	if gotModel != "openrouter/test-model" {
		t.Errorf("model = %q, want openrouter/test-model", gotModel)
	}

	wantRoles := []ai.Role{ai.RoleSystem, ai.RoleUser, ai.RoleModel, ai.RoleUser}
	if len(gotMessages) != len(wantRoles) {
		t.Fatalf("got %d messages, want %d", len(gotMessages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if gotMessages[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, gotMessages[i].Role, role)
		}
	}
	if text := gotMessages[0].Text(); text != "You are Reviewer." {
		t.Errorf("system prompt = %q", text)
	}
	if gotParams == nil || gotParams.Temperature.Value != 0.5 {
		t.Errorf("temperature not passed through: %+v", gotParams)
	}
}

func TestGenkitChatWithHistory_Errors(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		generate GenerateFunc
		wantErr  error
	}{
		{
			name:    "no api key",
			wantErr: ErrNotConfigured,
		},
		{
			name:   "blank reply",
			apiKey: "key",
			generate: func(ctx context.Context, model string, messages []*ai.Message, params *openai.ChatCompletionNewParams) (string, error) {
				return "  ", nil
			},
			wantErr: ErrEmptyCompletion,
		},
		{
			name:   "generation failure",
			apiKey: "key",
			generate: func(ctx context.Context, model string, messages []*ai.Message, params *openai.ChatCompletionNewParams) (string, error) {
				return "", errors.New("upstream down")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testLLMConfig()
			cfg.APIKey = tt.apiKey
			provider := NewGenkitProviderWithGenerate(cfg, tt.generate)

			_, err := provider.ChatWithHistory(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")
			if err == nil {
				t.Fatal("ChatWithHistory() should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenkitModelName(t *testing.T) {
	tests := map[string]string{
		"test-model":              "openrouter/test-model",
		"openrouter/test-model":   "openrouter/test-model",
		"meta-llama/llama-3:free": "openrouter/meta-llama/llama-3:free",
	}
	for in, want := range tests {
		if got := genkitModelName(in); got != want {
			t.Errorf("genkitModelName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantType any
		wantErr  bool
	}{
		{name: "default", provider: "", wantType: &OpenRouterProvider{}},
		{name: "openrouter", provider: "openrouter", wantType: &OpenRouterProvider{}},
		{name: "genkit", provider: "genkit", wantType: &GenkitProvider{}},
		{name: "unknown", provider: "bedrock", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.LLMConfig{Provider: tt.provider, Model: "test-model"}
			provider, err := NewLLMProvider(context.Background(), cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewLLMProvider() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLLMProvider() error = %v", err)
			}
			switch tt.wantType.(type) {
			case *OpenRouterProvider:
				if _, ok := provider.(*OpenRouterProvider); !ok {
					t.Errorf("provider = %T, want *OpenRouterProvider", provider)
				}
			case *GenkitProvider:
				if _, ok := provider.(*GenkitProvider); !ok {
					t.Errorf("provider = %T, want *GenkitProvider", provider)
				}
			}
			if provider.Enabled() {
				t.Error("provider without an API key should be disabled")
			}
		})
	}
}
