package domain

import (
	"context"
	"time"
)

// AccessToken is a personal access token row. Its ID is the jti of the bearer string.
type AccessToken struct {
	ID         string     `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID     string     `gorm:"type:varchar(32);index;not null" json:"user_id"`
	Name       string     `gorm:"size:64;not null" json:"name"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AccessToken) TableName() string { return "personal_access_tokens" }

// Expired reports whether the token has an expiry in the past.
func (t *AccessToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

type TokenRepository interface {
	Create(ctx context.Context, t *AccessToken) error
	FindByID(ctx context.Context, id string) (*AccessToken, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) ([]string, error)
}
