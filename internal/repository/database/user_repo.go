package database

import (
	"context"
	"strings"

	"simkas/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier matches either NIM or e-mail. E-mails are stored lowercased.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	var user model.User
	err := r.DB.WithContext(ctx).
		Where("nim = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByNIMOrEmail(ctx context.Context, nim, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("nim = ? OR email = ?", nim, email).
		Count(&n).Error
	return n > 0, err
}

// EmailTaken reports whether another user already owns email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, except uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", email, except).
		Count(&n).Error
	return n > 0, err
}

// UpdateProfile writes the mutable profile columns. Role is never touched here.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":      user.Name,
			"email":     user.Email,
			"phone":     user.Phone,
			"class_id":  user.ClassID,
			"cohort_id": user.CohortID,
		}).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password", hash).Error
}

// MemberIDsByClass lists plain members of a class.
func (r *UserRepository) MemberIDsByClass(ctx context.Context, classID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("class_id = ? AND role = ?", classID, model.RoleMember).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
