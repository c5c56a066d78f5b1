package responder

import (
	"context"
	"strings"
	"testing"
)

func TestFallbackProvider_Respond(t *testing.T) {
	p := NewFallbackProvider()

	inputs := []string{"hello", "What can you do?", "review my PR", `quote "this"`, "", "ñandú 🚀"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			res, err := p.Respond(context.Background(), Request{AgentName: "Support Triage", Message: in})
			if err != nil {
				t.Fatalf("Respond() error = %v", err)
			}
			if !strings.Contains(res.Content, "Support Triage") {
				t.Errorf("Expected agent name in %q", res.Content)
			}
			if !strings.Contains(res.Content, in) {
				t.Errorf("Expected verbatim input in %q", res.Content)
			}
			if res.Provider != "fallback" {
				t.Errorf("Expected provider fallback, got %s", res.Provider)
			}

			again, _ := p.Respond(context.Background(), Request{AgentName: "Support Triage", Message: in})
			if again.Content != res.Content {
				t.Error("Expected deterministic template selection")
			}
		})
	}
}

func TestFallbackProvider_DefaultName(t *testing.T) {
	res, _ := NewFallbackProvider().Respond(context.Background(), Request{Message: "hi"})
	if !strings.Contains(res.Content, "Assistant") {
		t.Errorf("Expected default agent name, got %q", res.Content)
	}
}

func TestTemplateIndex_InRange(t *testing.T) {
	seen := make(map[int]bool)
	for _, in := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		idx := templateIndex(in)
		if idx < 0 || idx >= len(fallbackTemplates) {
			t.Fatalf("templateIndex(%q) = %d out of range", in, idx)
		}
		seen[idx] = true
	}
	if len(seen) < 2 {
		t.Errorf("Expected varied template selection, only saw %v", seen)
	}
}
