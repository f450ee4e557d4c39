package database

import (
	"context"

	"simkas/internal/model"

	"gorm.io/gorm"
)

type MasterRepository struct {
	DB *gorm.DB
}

func (r *MasterRepository) CreateCohort(ctx context.Context, c *model.Cohort) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *MasterRepository) CreateClass(ctx context.Context, c *model.Class) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *MasterRepository) ListCohorts(ctx context.Context) ([]model.Cohort, error) {
	var list []model.Cohort
	err := r.DB.WithContext(ctx).Order("year DESC, id ASC").Find(&list).Error
	return list, err
}

func (r *MasterRepository) ListClasses(ctx context.Context) ([]model.Class, error) {
	var list []model.Class
	err := r.DB.WithContext(ctx).Order("code ASC").Find(&list).Error
	return list, err
}

func (r *MasterRepository) ListClassesByCohort(ctx context.Context, cohortID uint64) ([]model.Class, error) {
	var list []model.Class
	err := r.DB.WithContext(ctx).Where("cohort_id = ?", cohortID).Order("code ASC").Find(&list).Error
	return list, err
}

func (r *MasterRepository) FindClass(ctx context.Context, id uint64) (*model.Class, error) {
	var c model.Class
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MasterRepository) FindCohort(ctx context.Context, id uint64) (*model.Cohort, error) {
	var c model.Cohort
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MasterRepository) ClassCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Class{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}
