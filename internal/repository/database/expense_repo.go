package database

import (
	"context"

	"simkas/internal/model"

	"gorm.io/gorm"
)

type ExpenseRepository struct {
	DB *gorm.DB
}

func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *ExpenseRepository) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.Expense, error) {
	var list []model.Expense
	err := r.DB.WithContext(ctx).Where("campaign_id = ?", campaignID).Order("id DESC").Find(&list).Error
	return list, err
}

// ListByCampaigns feeds the dashboard fold; only campaign_id and amount are loaded.
func (r *ExpenseRepository) ListByCampaigns(ctx context.Context, campaignIDs []uint64) ([]model.Expense, error) {
	if len(campaignIDs) == 0 {
		return nil, nil
	}
	var list []model.Expense
	err := r.DB.WithContext(ctx).
		Select("id", "campaign_id", "amount").
		Where("campaign_id IN ?", campaignIDs).
		Find(&list).Error
	return list, err
}
