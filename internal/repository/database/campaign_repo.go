package database

import (
	"context"

	"simkas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampaignRepository struct {
	DB *gorm.DB
}

// listing order: active first, then newest
const campaignOrder = "active DESC, id DESC"

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CampaignRepository) FindByID(ctx context.Context, id uint64) (*model.Campaign, error) {
	var c model.Campaign
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListVisible returns campaigns of the caller's class and cohort plus the ones it owns.
func (r *CampaignRepository) ListVisible(ctx context.Context, classID, cohortID *uint64, ownerID uint64) ([]model.Campaign, error) {
	cond := r.DB.Where("owner_id = ?", ownerID)
	if classID != nil {
		cond = cond.Or("scope = ? AND class_id = ?", model.ScopeClass, *classID)
	}
	if cohortID != nil {
		cond = cond.Or("scope = ? AND cohort_id = ?", model.ScopeCohort, *cohortID)
	}
	var list []model.Campaign
	err := r.DB.WithContext(ctx).Where(cond).Order(campaignOrder).Find(&list).Error
	return list, err
}

func (r *CampaignRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Campaign, error) {
	var list []model.Campaign
	err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order(campaignOrder).Find(&list).Error
	return list, err
}

// ListForUnits returns CLASS campaigns of classIDs and, when cohortID is set,
// COHORT campaigns of that cohort.
func (r *CampaignRepository) ListForUnits(ctx context.Context, classIDs []uint64, cohortID *uint64) ([]model.Campaign, error) {
	if len(classIDs) == 0 && cohortID == nil {
		return nil, nil
	}
	var cond *gorm.DB
	if len(classIDs) > 0 {
		cond = r.DB.Where("scope = ? AND class_id IN ?", model.ScopeClass, classIDs)
	}
	if cohortID != nil {
		if cond == nil {
			cond = r.DB.Where("scope = ? AND cohort_id = ?", model.ScopeCohort, *cohortID)
		} else {
			cond = cond.Or("scope = ? AND cohort_id = ?", model.ScopeCohort, *cohortID)
		}
	}
	var list []model.Campaign
	err := r.DB.WithContext(ctx).Where(cond).Order(campaignOrder).Find(&list).Error
	return list, err
}

// SetActive flips the flag and records the outbox event. changed is false
// when the campaign already had the requested state.
func (r *CampaignRepository) SetActive(ctx context.Context, id uint64, active bool) (*model.Campaign, bool, error) {
	var (
		c       model.Campaign
		changed bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
			return err
		}
		if c.Active == active {
			return nil
		}
		if err := tx.Model(&model.Campaign{}).Where("id = ?", id).Update("active", active).Error; err != nil {
			return err
		}
		c.Active = active
		changed = true

		event := model.EventCampaignDeactivated
		if active {
			event = model.EventCampaignActivated
		}
		return insertOutbox(tx, event, c.ID, map[string]any{
			"campaign_id": c.ID,
			"active":      active,
			"owner_id":    c.OwnerID,
		})
	})
	if err != nil {
		return nil, false, err
	}
	return &c, changed, nil
}
