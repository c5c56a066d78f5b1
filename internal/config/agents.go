package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// AgentSeed describes an agent inserted at startup when the catalog is empty
type AgentSeed struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	PricingTier  string   `json:"pricing_tier"`
	ContextType  string   `json:"context_type"`
	SystemPrompt string   `json:"system_prompt"`
	WebhookURL   string   `json:"webhook_url,omitempty"`
	Keywords     []string `json:"keywords"`
}

// AgentCatalog holds the seed agents loaded from a JSON file
type AgentCatalog struct {
	agents []AgentSeed
}

// NewAgentCatalog reads a JSON array of agent seeds from configPath
func NewAgentCatalog(configPath string) (*AgentCatalog, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var agents []AgentSeed
	if err := json.Unmarshal(data, &agents); err != nil {
		return nil, err
	}

	for i, a := range agents {
		if a.Name == "" {
			return nil, fmt.Errorf("agent seed %d: name is required", i)
		}
	}

	return &AgentCatalog{agents: agents}, nil
}

// Agents returns the seed agents in file order
func (c *AgentCatalog) Agents() []AgentSeed {
	if c == nil {
		return nil
	}
	return c.agents
}

// Len returns the number of seed agents
func (c *AgentCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.agents)
}
