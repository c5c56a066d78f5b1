// Package service holds the error kinds shared by the domain services. The
// HTTP layer maps each kind to a status code with errors.Is.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds
var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

// Domain errors, each wrapping one kind
var (
	ErrAlreadySubscribed    = fmt.Errorf("%w: already subscribed to this agent", ErrValidation)
	ErrEmptyContent         = fmt.Errorf("%w: message content is required", ErrValidation)
	ErrAgentUnavailable     = fmt.Errorf("%w: agent is not active", ErrValidation)
	ErrNotSubscribed        = fmt.Errorf("%w: an active subscription to this agent is required", ErrForbidden)
	ErrNotOwner             = fmt.Errorf("%w: conversation belongs to another user", ErrForbidden)
	ErrConversationNotFound = fmt.Errorf("%w: conversation not found", ErrNotFound)
	ErrAgentNotFound        = fmt.Errorf("%w: agent not found", ErrNotFound)
	ErrSubscriptionNotFound = fmt.Errorf("%w: subscription not found", ErrNotFound)
)

// Validation wraps a field-level message as an ErrValidation
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Message strips the kind prefix so handlers can show the domain message
func Message(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrForbidden, ErrNotFound} {
		if trimmed, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
			return trimmed
		}
	}
	return msg
}
