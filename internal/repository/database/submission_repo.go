package database

import (
	"context"
	"time"

	"simkas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

// pending rows first, insertion order inside each group
const pendingFirst = "CASE WHEN status = 'PENDING' THEN 0 ELSE 1 END ASC, id ASC"

// Create locks the campaign row, lets check veto the write, then inserts the
// submission with its outbox event. A vetoed create leaves no row behind.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission, check func(*model.Campaign) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Campaign
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&c, s.CampaignID).Error; err != nil {
			return err
		}
		if check != nil {
			if err := check(&c); err != nil {
				return err
			}
		}
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		return insertOutbox(tx, model.EventSubmissionCreated, s.ID, map[string]any{
			"submission_id": s.ID,
			"campaign_id":   s.CampaignID,
			"submitter_id":  s.SubmitterID,
			"status":        s.Status,
			"amount":        s.Amount.String(),
			"note":          s.Note,
		})
	})
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint64) (*model.Submission, error) {
	var s model.Submission
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByCampaign returns the pending-first view, or only rows in status when given.
func (r *SubmissionRepository) ListByCampaign(ctx context.Context, campaignID uint64, status model.Status) ([]model.Submission, error) {
	q := r.DB.WithContext(ctx).Where("campaign_id = ?", campaignID)
	if status != "" {
		q = q.Where("status = ?", status).Order("id ASC")
	} else {
		q = q.Order(pendingFirst)
	}
	var list []model.Submission
	err := q.Find(&list).Error
	return list, err
}

// ListBySubmitter is the member's history, newest first, with campaign names.
func (r *SubmissionRepository) ListBySubmitter(ctx context.Context, submitterID uint64) ([]model.Submission, error) {
	var list []model.Submission
	err := r.DB.WithContext(ctx).
		Model(&model.Submission{}).
		Select("submissions.*, campaigns.name AS campaign_name").
		Joins("JOIN campaigns ON campaigns.id = submissions.campaign_id").
		Where("submissions.submitter_id = ?", submitterID).
		Order("submissions.id DESC").
		Find(&list).Error
	return list, err
}

// FoldRows loads only the columns the aggregation fold reads.
func (r *SubmissionRepository) FoldRows(ctx context.Context, campaignIDs []uint64) ([]model.Submission, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}
	var list []model.Submission
	err := r.DB.WithContext(ctx).
		Select("id", "campaign_id", "submitter_id", "amount", "status", "submitted_at").
		Where("campaign_id IN ?", campaignIDs).
		Find(&list).Error
	return list, err
}

func (r *SubmissionRepository) ProofRefUsed(ctx context.Context, ref string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).Where("proof_ref = ?", ref).Count(&n).Error
	return n > 0, err
}

func (r *SubmissionRepository) CountByStatus(ctx context.Context, campaignID uint64, status model.Status) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Submission{}).
		Where("campaign_id = ? AND status = ?", campaignID, status).
		Count(&n).Error
	return n, err
}

// Transition moves a PENDING submission to `to` with one conditional update.
// changed is false when the row was no longer PENDING; nothing is written then.
func (r *SubmissionRepository) Transition(ctx context.Context, id uint64, to model.Status, note string, deciderID uint64, at time.Time) (*model.Submission, bool, error) {
	var (
		updated model.Submission
		changed bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Submission{}).
			Where("id = ? AND status = ?", id, model.StatusPending).
			Updates(map[string]any{
				"status":     to,
				"admin_note": note,
				"decided_by": deciderID,
				"decided_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		if err := tx.First(&updated, id).Error; err != nil {
			return err
		}

		event := model.EventSubmissionApproved
		if to == model.StatusRejected {
			event = model.EventSubmissionRejected
		}
		return insertOutbox(tx, event, id, map[string]any{
			"submission_id": id,
			"campaign_id":   updated.CampaignID,
			"submitter_id":  updated.SubmitterID,
			"status":        to,
			"amount":        updated.Amount.String(),
			"note":          note,
			"decided_by":    deciderID,
		})
	})
	if err != nil || !changed {
		return nil, false, err
	}
	return &updated, true, nil
}
