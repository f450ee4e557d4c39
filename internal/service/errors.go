package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Every error a caller can act on wraps one of these.
var (
	ErrNotFound            = errors.New("not found")
	ErrCampaignInactive    = errors.New("campaign is inactive")
	ErrInvalidTransition   = errors.New("submission is no longer pending")
	ErrMissingReason       = errors.New("rejection reason is required")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidProof        = errors.New("invalid proof image")
	ErrInvalidParams       = errors.New("invalid params")
	ErrAffiliationRequired = errors.New("class or cohort affiliation required")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
)

// notFound maps gorm's miss to ErrNotFound and wraps anything else with op.
func notFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
