package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"todo-api/internal/domain"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Create(ctx context.Context, t *domain.AccessToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TokenRepo) FindByID(ctx context.Context, id string) (*domain.AccessToken, error) {
	var t domain.AccessToken
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Touch 更新 last_used_at；不触发 updated_at
func (r *TokenRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.AccessToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", at).Error
}

func (r *TokenRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.AccessToken{}).Error
}

// DeleteByUser removes every token of the user and returns the removed ids.
func (r *TokenRepo) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.AccessToken{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Where("user_id = ?", userID).Delete(&domain.AccessToken{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
