package handlers

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/app"
	adminService "agent-market/internal/service/admin"
	conversationService "agent-market/internal/service/conversation"
	"net/http"
)

// AdminHandlers serves the admin dashboard
type AdminHandlers struct {
	adminService        *adminService.AdminService
	conversationService *conversationService.ConversationService
}

// NewAdminHandlers creates a new AdminHandlers
func NewAdminHandlers(config *app.Config, admin *adminService.AdminService) *AdminHandlers {
	return &AdminHandlers{
		adminService:        admin,
		conversationService: conversationService.NewConversationService(config.DB),
	}
}

// StatsHandler returns dashboard totals
func (h *AdminHandlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

// ListAllConversationsHandler returns every conversation, most recently updated first
func (h *AdminHandlers) ListAllConversationsHandler(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversationService.ListAll(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]ConversationData, 0, len(conversations))
	for i := range conversations {
		data = append(data, toConversationData(&conversations[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"conversations": data})
}

// HealthHandler reports liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
