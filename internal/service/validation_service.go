package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"simkas/internal/model"
	"simkas/internal/repository/database"
)

// ValidationService owns the only two transitions a submission has.
type ValidationService struct {
	subs      *database.SubmissionRepository
	campaigns *database.CampaignRepository
	now       func() time.Time
	log       *log.Logger
}

func NewValidationService(subs *database.SubmissionRepository, campaigns *database.CampaignRepository, logger *log.Logger) *ValidationService {
	if logger == nil {
		logger = log.Default()
	}
	return &ValidationService{subs: subs, campaigns: campaigns, now: time.Now, log: logger}
}

// Approve moves a PENDING submission to VALID and clears the admin note.
func (s *ValidationService) Approve(ctx context.Context, actor model.Actor, id uint64) (*model.Submission, error) {
	return s.decide(ctx, actor, id, model.StatusValid, "")
}

// Reject moves a PENDING submission to REJECTED. The reason is checked
// before anything is read.
func (s *ValidationService) Reject(ctx context.Context, actor model.Actor, id uint64, reason string) (*model.Submission, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}
	return s.decide(ctx, actor, id, model.StatusRejected, reason)
}

func (s *ValidationService) decide(ctx context.Context, actor model.Actor, id uint64, to model.Status, note string) (*model.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find submission", err)
	}
	c, err := s.campaigns.FindByID(ctx, sub.CampaignID)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if !CanValidate(actor, c) {
		return nil, ErrForbidden
	}
	if !sub.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	updated, changed, err := s.subs.Transition(ctx, id, to, note, actor.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("transition submission %d: %w", id, err)
	}
	if !changed {
		// lost the race to another validator
		return nil, ErrInvalidTransition
	}
	s.log.Printf("submission %d %s -> %s by user %d", id, model.StatusPending, to, actor.ID)
	return updated, nil
}
