package repo

import (
	"gorm.io/gorm"

	"todo-api/internal/domain"
)

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.User{}, &domain.AccessToken{}, &domain.Todo{}}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
