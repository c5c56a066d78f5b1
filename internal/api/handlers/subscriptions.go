package handlers

import (
	"agent-market/internal/api/respond"
	"agent-market/internal/app"
	subscriptionService "agent-market/internal/service/subscription"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SubscribeRequest struct {
	AgentID string `json:"agentId"`
	Tier    string `json:"tier"`
}

type SubscriptionStatusResponse struct {
	IsSubscribed bool              `json:"isSubscribed"`
	Subscription *SubscriptionData `json:"subscription"`
}

// SubscriptionHandlers serves the caller's subscriptions
type SubscriptionHandlers struct {
	subscriptionService *subscriptionService.SubscriptionService
}

// NewSubscriptionHandlers creates a new SubscriptionHandlers
func NewSubscriptionHandlers(config *app.Config) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		subscriptionService: subscriptionService.NewSubscriptionService(config.DB),
	}
}

// SubscribeHandler subscribes the caller to an agent
func (h *SubscriptionHandlers) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req SubscribeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadBody(w, err)
		return
	}

	sub, err := h.subscriptionService.Subscribe(r.Context(), id.UserID, req.AgentID, req.Tier)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, map[string]any{
		"subscription": toSubscriptionData(sub),
		"message":      "Successfully subscribed to agent",
	})
}

// ListSubscriptionsHandler lists the caller's active subscriptions, newest first
func (h *SubscriptionHandlers) ListSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.ListActive(r.Context(), id.UserID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	data := make([]SubscriptionData, 0, len(subs))
	for i := range subs {
		data = append(data, toSubscriptionData(&subs[i]))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"subscriptions": data})
}

// SubscriptionStatusHandler reports whether the caller is subscribed to an agent
func (h *SubscriptionHandlers) SubscriptionStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	agentID := chi.URLParam(r, "agentId")

	resp := SubscriptionStatusResponse{}
	if h.subscriptionService.IsSubscribed(r.Context(), id.UserID, agentID) {
		if sub, err := h.subscriptionService.Get(r.Context(), id.UserID, agentID); err == nil {
			data := toSubscriptionData(sub)
			resp.IsSubscribed = true
			resp.Subscription = &data
		}
	}
	respond.JSON(w, http.StatusOK, resp)
}

// CancelSubscriptionHandler cancels the caller's subscription to an agent
func (h *SubscriptionHandlers) CancelSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(r.Context(), id.UserID, chi.URLParam(r, "agentId")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Subscription cancelled"})
}

// ExpireSubscriptionHandler marks a subscription as expired (admin only)
func (h *SubscriptionHandlers) ExpireSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptionService.Expire(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Subscription expired"})
}
