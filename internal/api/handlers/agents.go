package handlers

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/app"
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	agentService "agent-market/internal/service/agent"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type CreateAgentRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	PricingTier  string   `json:"pricing_tier"`
	ContextType  string   `json:"context_type"`
	SystemPrompt string   `json:"system_prompt"`
	WebhookURL   string   `json:"webhook_url"`
	Keywords     []string `json:"keywords"`
	IsActive     *bool    `json:"is_active"`
}

// UpdateAgentRequest is a partial update; absent fields are left unchanged
type UpdateAgentRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Category     *string   `json:"category"`
	PricingTier  *string   `json:"pricing_tier"`
	ContextType  *string   `json:"context_type"`
	SystemPrompt *string   `json:"system_prompt"`
	WebhookURL   *string   `json:"webhook_url"`
	Keywords     *[]string `json:"keywords"`
	IsActive     *bool     `json:"is_active"`
}

// AgentHandlers serves the public marketplace and the admin agent catalog
type AgentHandlers struct {
	agentService *agentService.AgentService
}

// NewAgentHandlers creates a new AgentHandlers
func NewAgentHandlers(config *app.Config) *AgentHandlers {
	return &AgentHandlers{
		agentService: agentService.NewAgentService(config.DB),
	}
}

// ListMarketplaceHandler lists active agents, filtered by ?category= and ?q=
func (h *AgentHandlers) ListMarketplaceHandler(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agentService.List(r.Context(), db.AgentFilter{
		ActiveOnly: true,
		Category:   r.URL.Query().Get("category"),
		Query:      r.URL.Query().Get("q"),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]PublicAgentData, 0, len(agents))
	for i := range agents {
		data = append(data, toPublicAgentData(&agents[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"agents": data})
}

// GetMarketplaceAgentHandler returns one active agent
func (h *AgentHandlers) GetMarketplaceAgentHandler(w http.ResponseWriter, r *http.Request) {
	agent, err := h.agentService.GetActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"agent": toPublicAgentData(agent)})
}

// ListAgentsHandler lists every agent for admins, newest first. ?active=true
// limits the list to active agents.
func (h *AgentHandlers) ListAgentsHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	agents, err := h.agentService.List(r.Context(), db.AgentFilter{
		ActiveOnly: activeOnly,
		Category:   r.URL.Query().Get("category"),
		Query:      r.URL.Query().Get("q"),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]AgentData, 0, len(agents))
	for i := range agents {
		data = append(data, toAgentData(&agents[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"agents": data})
}

// GetAgentHandler returns any agent, active or not
func (h *AgentHandlers) GetAgentHandler(w http.ResponseWriter, r *http.Request) {
	agent, err := h.agentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"agent": toAgentData(agent)})
}

// CreateAgentHandler creates an agent
func (h *AgentHandlers) CreateAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req CreateAgentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	agent, err := h.agentService.Create(r.Context(), agentService.CreateAgentRequest{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		PricingTier:  req.PricingTier,
		ContextType:  req.ContextType,
		SystemPrompt: req.SystemPrompt,
		WebhookURL:   req.WebhookURL,
		Keywords:     req.Keywords,
		IsActive:     req.IsActive,
		CreatedBy:    id.UserID,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]any{"success": true, "agent": toAgentData(agent)})
}

// UpdateAgentHandler applies a partial update
func (h *AgentHandlers) UpdateAgentHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateAgentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	agent, err := h.agentService.Update(r.Context(), chi.URLParam(r, "id"), agentService.UpdateAgentRequest{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		PricingTier:  req.PricingTier,
		ContextType:  req.ContextType,
		SystemPrompt: req.SystemPrompt,
		WebhookURL:   req.WebhookURL,
		Keywords:     req.Keywords,
		IsActive:     req.IsActive,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "agent": toAgentData(agent)})
}

// DeleteAgentHandler soft-deletes an agent
func (h *AgentHandlers) DeleteAgentHandler(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")
	if err := h.agentService.Delete(r.Context(), agentID); err != nil {
		respond.Error(w, r, err)
		return
	}

	logger.FromContext(r.Context()).WithField("agent_id", agentID).Debug("Agent delete request served")
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Agent deactivated"})
}
