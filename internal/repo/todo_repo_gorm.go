package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-api/internal/domain"
)

type TodoRepo struct{ db *gorm.DB }

func NewTodoRepo(db *gorm.DB) *TodoRepo { return &TodoRepo{db: db} }

func (r *TodoRepo) Create(ctx context.Context, t *domain.Todo) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// scoped 显式选择软删范围，不依赖 gorm 的默认作用域
func (r *TodoRepo) scoped(ctx context.Context, scope domain.Scope) *gorm.DB {
	q := r.db.WithContext(ctx)
	if scope == domain.ScopeTrashed {
		return q.Unscoped().Where("deleted_at IS NOT NULL")
	}
	return q.Where("deleted_at IS NULL")
}

func (r *TodoRepo) FindOwned(ctx context.Context, id, ownerID string, scope domain.Scope) (*domain.Todo, error) {
	var t domain.Todo
	err := r.scoped(ctx, scope).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TodoRepo) List(ctx context.Context, q domain.TodoQuery) ([]domain.Todo, int64, error) {
	tx := r.scoped(ctx, domain.ScopeActive).Model(&domain.Todo{}).Where("user_id = ?", q.OwnerID)
	if q.Completed != nil {
		tx = tx.Where("completed = ?", *q.Completed)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.CountOnly || int64(q.Offset) >= total {
		return nil, total, nil
	}

	sort := q.Sort
	if _, ok := domain.SortColumns[sort]; !ok {
		sort = domain.SortCreatedAt
	}
	var items []domain.Todo
	err := tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: sort}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Desc}).
		Limit(q.Limit).Offset(q.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update 只写入 cols 指定的列（以及 updated_at）；行已不在活动范围内时返回 false
func (r *TodoRepo) Update(ctx context.Context, t *domain.Todo, cols ...string) (bool, error) {
	cols = append(cols, "updated_at")
	res := r.scoped(ctx, domain.ScopeActive).
		Model(t).
		Where("user_id = ?", t.UserID).
		Select(cols).
		Updates(t)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete 仅作用于未删除的行；已软删的返回 false
func (r *TodoRepo) SoftDelete(ctx context.Context, t *domain.Todo) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", t.UserID).Delete(t)
	if res.Error != nil {
		return false, res.Error
	}
	// gorm 软删会把 deleted_at 回写到 t
	return res.RowsAffected > 0, nil
}

func (r *TodoRepo) Restore(ctx context.Context, t *domain.Todo) error {
	err := r.db.WithContext(ctx).Unscoped().
		Model(t).
		Where("user_id = ?", t.UserID).
		UpdateColumn("deleted_at", nil).Error
	if err != nil {
		return err
	}
	t.DeletedAt = gorm.DeletedAt{}
	return nil
}
