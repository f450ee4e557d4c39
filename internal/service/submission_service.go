package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"simkas/internal/model"
	"simkas/internal/pkg"
	"simkas/internal/repository/blob"
	"simkas/internal/repository/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SubmissionService struct {
	subs      *database.SubmissionRepository
	campaigns *database.CampaignRepository
	users     *database.UserRepository
	master    *database.MasterRepository
	blobs     blob.Store
	now       func() time.Time
	log       *log.Logger
}

func NewSubmissionService(
	subs *database.SubmissionRepository,
	campaigns *database.CampaignRepository,
	users *database.UserRepository,
	master *database.MasterRepository,
	blobs blob.Store,
	logger *log.Logger,
) *SubmissionService {
	if logger == nil {
		logger = log.Default()
	}
	return &SubmissionService{
		subs:      subs,
		campaigns: campaigns,
		users:     users,
		master:    master,
		blobs:     blobs,
		now:       time.Now,
		log:       logger,
	}
}

type SubmitInput struct {
	CampaignID  uint64
	Amount      decimal.Decimal
	Note        string
	PeriodMonth int
	PeriodYear  int
	ProofRef    string
}

// Submit records a PENDING submission. The campaign's active flag and the
// caller's right to pay are re-checked inside the insert transaction.
// The proof must be one the caller uploaded and no other submission uses.
func (s *SubmissionService) Submit(ctx context.Context, actor model.Actor, in SubmitInput) (*model.Submission, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}
	if err := s.submittable(ctx, actor, in.CampaignID); err != nil {
		return nil, err
	}
	if err := s.checkProof(ctx, actor, in.ProofRef); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound("find submitter", err)
	}
	className := ""
	if user.ClassID != nil {
		if class, err := s.master.FindClass(ctx, *user.ClassID); err == nil {
			className = class.Name
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find class: %w", err)
		}
	}

	sub := &model.Submission{
		CampaignID:    in.CampaignID,
		SubmitterID:   user.ID,
		SubmitterName: user.Name,
		SubmitterNIM:  user.NIM,
		ClassName:     className,
		Amount:        in.Amount,
		Note:          strings.TrimSpace(in.Note),
		PeriodMonth:   in.PeriodMonth,
		PeriodYear:    in.PeriodYear,
		Status:        model.StatusPending,
		ProofRef:      in.ProofRef,
		SubmittedAt:   s.now(),
	}
	err = s.subs.Create(ctx, sub, func(c *model.Campaign) error {
		return CanSubmit(actor, c)
	})
	switch {
	case err == nil:
		return sub, nil
	case errors.Is(err, ErrCampaignInactive), errors.Is(err, ErrForbidden):
		return nil, err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, fmt.Errorf("proof %s already used: %w", in.ProofRef, ErrInvalidProof)
	default:
		return nil, notFound("create submission", err)
	}
}

// SubmitWithProof stores the uploaded image and records the submission.
// Nothing is stored for a campaign the caller may not pay into, and the
// image is removed again when the insert fails.
func (s *SubmissionService) SubmitWithProof(ctx context.Context, actor model.Actor, in SubmitInput, proof io.Reader) (*model.Submission, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}
	if err := s.submittable(ctx, actor, in.CampaignID); err != nil {
		return nil, err
	}
	key, err := s.StoreProof(ctx, actor, proof)
	if err != nil {
		return nil, err
	}
	in.ProofRef = key
	sub, err := s.Submit(ctx, actor, in)
	if err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.log.Printf("discard proof %s: %v", key, derr)
		}
		return nil, err
	}
	return sub, nil
}

func validateSubmit(in SubmitInput) error {
	if !in.Amount.IsPositive() || !model.FitsMoney(in.Amount) {
		return ErrInvalidAmount
	}
	if in.PeriodMonth < 0 || in.PeriodMonth > 12 || in.PeriodYear < 0 {
		return ErrInvalidParams
	}
	return nil
}

func (s *SubmissionService) submittable(ctx context.Context, actor model.Actor, campaignID uint64) error {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return notFound("find campaign", err)
	}
	return CanSubmit(actor, c)
}

func proofPrefix(userID uint64) string {
	return fmt.Sprintf("proofs/%d/", userID)
}

func (s *SubmissionService) checkProof(ctx context.Context, actor model.Actor, ref string) error {
	if ref == "" || strings.Contains(ref, "..") {
		return ErrInvalidProof
	}
	if !strings.HasPrefix(ref, proofPrefix(actor.ID)) {
		return fmt.Errorf("proof %s not uploaded by user %d: %w", ref, actor.ID, ErrInvalidProof)
	}
	ok, err := s.blobs.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("check proof: %w", err)
	}
	if !ok {
		return fmt.Errorf("proof %s: %w", ref, ErrInvalidProof)
	}
	used, err := s.subs.ProofRefUsed(ctx, ref)
	if err != nil {
		return fmt.Errorf("check proof: %w", err)
	}
	if used {
		return fmt.Errorf("proof %s already used: %w", ref, ErrInvalidProof)
	}
	return nil
}

// StoreProof normalises an uploaded image and returns its blob key, which
// lives under the uploader's prefix.
func (s *SubmissionService) StoreProof(ctx context.Context, actor model.Actor, r io.Reader) (string, error) {
	data, err := pkg.NormalizeProof(r)
	if err != nil {
		if errors.Is(err, pkg.ErrUndecodableImage) {
			return "", fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		return "", err
	}
	now := s.now().UTC()
	key := fmt.Sprintf("%s%04d/%02d/%s.jpg", proofPrefix(actor.ID), now.Year(), int(now.Month()), uuid.NewString())
	if err := s.blobs.Put(ctx, key, "image/jpeg", bytes.NewReader(data)); err != nil {
		return "", err
	}
	return key, nil
}

// ListForCampaign is the validator queue: PENDING first unless status narrows it.
func (s *SubmissionService) ListForCampaign(ctx context.Context, actor model.Actor, campaignID uint64, status string) ([]model.Submission, error) {
	c, err := s.campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if !CanValidate(actor, c) {
		return nil, ErrForbidden
	}
	var filter model.Status
	if status != "" {
		st, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("status %q: %w", status, ErrInvalidParams)
		}
		if st != model.StatusPending {
			filter = st
		}
	}
	list, err := s.subs.ListByCampaign(ctx, campaignID, filter)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return list, nil
}

// Get is visible to the submitter and to the campaign's validators.
func (s *SubmissionService) Get(ctx context.Context, actor model.Actor, id uint64) (*model.Submission, error) {
	sub, err := s.subs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find submission", err)
	}
	if sub.SubmitterID == actor.ID {
		return sub, nil
	}
	c, err := s.campaigns.FindByID(ctx, sub.CampaignID)
	if err != nil {
		return nil, notFound("find campaign", err)
	}
	if !CanValidate(actor, c) {
		return nil, ErrForbidden
	}
	return sub, nil
}

func (s *SubmissionService) History(ctx context.Context, actor model.Actor) ([]model.Submission, error) {
	list, err := s.subs.ListBySubmitter(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return list, nil
}

// Proof opens the stored image of a submission. The caller closes the reader.
func (s *SubmissionService) Proof(ctx context.Context, actor model.Actor, id uint64) (io.ReadCloser, string, error) {
	sub, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	rc, ct, err := s.blobs.Get(ctx, sub.ProofRef)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, "", fmt.Errorf("proof %s: %w", sub.ProofRef, ErrNotFound)
		}
		return nil, "", err
	}
	return rc, ct, nil
}
