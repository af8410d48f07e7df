package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Todo struct {
	ID        string         `gorm:"primaryKey;type:varchar(32)" json:"id"`
	UserID    string         `gorm:"type:varchar(32);index;not null" json:"user_id"`
	Title     string         `gorm:"size:100;not null" json:"title"`
	Content   *string        `gorm:"type:text" json:"content"`
	Completed bool           `gorm:"not null;default:false;index" json:"completed"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (Todo) TableName() string { return "todos" }

// TodoView is the serialized shape: the row plus its owner.
type TodoView struct {
	Todo
	User *User `json:"user"`
}

// Scope selects which side of the soft-delete marker a lookup sees.
type Scope int

const (
	ScopeActive Scope = iota
	ScopeTrashed
)

// 允许排序的列
const (
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortTitle     = "title"
	SortCompleted = "completed"
)

var SortColumns = map[string]struct{}{
	SortCreatedAt: {}, SortUpdatedAt: {}, SortTitle: {}, SortCompleted: {},
}

type TodoQuery struct {
	OwnerID   string
	Completed *bool // nil = 不过滤
	Sort      string
	Desc      bool
	Offset    int
	Limit     int
	CountOnly bool // 只统计总数，不取行
}

type TodoRepository interface {
	Create(ctx context.Context, t *Todo) error
	FindOwned(ctx context.Context, id, ownerID string, scope Scope) (*Todo, error)
	List(ctx context.Context, q TodoQuery) ([]Todo, int64, error)
	Update(ctx context.Context, t *Todo, cols ...string) (bool, error)
	SoftDelete(ctx context.Context, t *Todo) (bool, error)
	Restore(ctx context.Context, t *Todo) error
}
