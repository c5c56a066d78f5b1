package subscription

import (
	"agent-market/internal/logger"
	"agent-market/internal/repository/db"
	"agent-market/internal/service"
	"agent-market/pkg/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// SubscriptionService gates access to agents
type SubscriptionService struct {
	db        db.Database
	validator *validation.SubscriptionRequestValidator
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(database db.Database) *SubscriptionService {
	return &SubscriptionService{
		db:        database,
		validator: validation.NewSubscriptionRequestValidator(),
	}
}

// IsSubscribed reports whether the user holds an active subscription to the
// agent. Lookup failures count as not subscribed.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, agentID string) bool {
	if userID == "" || agentID == "" {
		return false
	}

	_, err := s.db.GetActiveSubscription(ctx, userID, agentID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.FromContext(ctx).WithFields(logrus.Fields{
				"user_id":  userID,
				"agent_id": agentID,
			}).WithError(err).Error("Subscription lookup failed, treating as not subscribed")
		}
		return false
	}
	return true
}

// Subscribe creates an active subscription and snapshots the agent's display
// fields into it
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, agentID, tier string) (*db.Subscription, error) {
	agentID = strings.TrimSpace(agentID)
	tier = strings.TrimSpace(tier)
	if err := s.validator.ValidateSubscribeRequest(agentID, tier); err != nil {
		return nil, service.Validation(err.Error())
	}
	if tier == "" {
		tier = db.PricingBasic
	}

	agent, err := s.db.GetAgent(ctx, agentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, service.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	if !agent.IsActive {
		return nil, service.ErrAgentUnavailable
	}

	sub := &db.Subscription{
		UserID:  userID,
		AgentID: agent.ID,
		Tier:    tier,
		Status:  db.StatusActive,
		Agent:   db.SnapshotOf(agent),
	}
	if err := s.db.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, db.ErrAlreadySubscribed) {
			return nil, service.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"agent_id":        agent.ID,
		"tier":            tier,
	}).Info("User subscribed to agent")

	return sub, nil
}

// ListActive returns the user's active subscriptions, newest first
func (s *SubscriptionService) ListActive(ctx context.Context, userID string) ([]db.Subscription, error) {
	subs, err := s.db.ListActiveSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// Get returns the user's active subscription to the agent
func (s *SubscriptionService) Get(ctx context.Context, userID, agentID string) (*db.Subscription, error) {
	sub, err := s.db.GetActiveSubscription(ctx, userID, agentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, service.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// Cancel ends the user's active subscription to the agent
func (s *SubscriptionService) Cancel(ctx context.Context, userID, agentID string) error {
	sub, err := s.Get(ctx, userID, agentID)
	if err != nil {
		return err
	}
	if err := s.setStatus(ctx, sub.ID, db.StatusCancelled); err != nil {
		return err
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"subscription_id": sub.ID,
		"agent_id":        agentID,
	}).Info("Subscription cancelled")
	return nil
}

// Expire marks a subscription as expired
func (s *SubscriptionService) Expire(ctx context.Context, subscriptionID string) error {
	if err := s.setStatus(ctx, subscriptionID, db.StatusExpired); err != nil {
		return err
	}
	logger.FromContext(ctx).WithField("subscription_id", subscriptionID).Info("Subscription expired")
	return nil
}

func (s *SubscriptionService) setStatus(ctx context.Context, id, status string) error {
	if err := s.db.UpdateSubscriptionStatus(ctx, id, status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return service.ErrSubscriptionNotFound
		}
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}
