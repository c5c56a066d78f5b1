package validation

import (
	"fmt"
	"strings"
)

// SubscriptionTiers are the tiers a user can subscribe at
var SubscriptionTiers = []string{"basic", "premium", "enterprise"}

// SubscriptionRequestValidator validates subscription requests
type SubscriptionRequestValidator struct{}

// NewSubscriptionRequestValidator creates a new SubscriptionRequestValidator
func NewSubscriptionRequestValidator() *SubscriptionRequestValidator {
	return &SubscriptionRequestValidator{}
}

// ValidateTier checks tier against SubscriptionTiers. Empty is allowed and
// means the default tier.
func (v *SubscriptionRequestValidator) ValidateTier(tier string) error {
	if tier == "" {
		return nil
	}
	if !oneOf(tier, SubscriptionTiers) {
		return fmt.Errorf("tier must be one of: %s; got %s", strings.Join(SubscriptionTiers, ", "), tier)
	}
	return nil
}

// ValidateSubscribeRequest validates a subscribe request
func (v *SubscriptionRequestValidator) ValidateSubscribeRequest(agentID, tier string) error {
	if strings.TrimSpace(agentID) == "" {
		return fmt.Errorf("agentId is required")
	}
	return v.ValidateTier(tier)
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
