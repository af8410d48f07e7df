package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/domain"
	"todo-api/internal/repo"
	"todo-api/internal/repo/repotest"
	"todo-api/pkg/utils"
)

func seedUser(t *testing.T, r *repo.UserRepo, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: utils.NewID(), Name: "n", Email: email, PasswordHash: "x"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	users := repo.NewUserRepo(repotest.Open(t))

	u := seedUser(t, users, "a@x.com")

	got, err := users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@x.com", got.Email)

	missing, err := users.FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &domain.User{ID: utils.NewID(), Name: "n", Email: "a@x.com", PasswordHash: "x"}
	assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrDuplicate)
}

func TestTokenRepo(t *testing.T) {
	ctx := context.Background()
	db := repotest.Open(t)
	u := seedUser(t, repo.NewUserRepo(db), "a@x.com")
	tokens := repo.NewTokenRepo(db)

	for _, id := range []string{"t1", "t2"} {
		require.NoError(t, tokens.Create(ctx, &domain.AccessToken{ID: id, UserID: u.ID, Name: "auth_token"}))
	}
	require.NoError(t, tokens.Create(ctx, &domain.AccessToken{ID: "other", UserID: "someone", Name: "auth_token"}))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, tokens.Touch(ctx, "t1", now))
	t1, err := tokens.FindByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, t1.LastUsedAt)
	assert.True(t, now.Equal(t1.LastUsedAt.UTC()))

	require.NoError(t, tokens.Delete(ctx, "t1"))
	gone, err := tokens.FindByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	ids, err := tokens.DeleteByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids)

	other, err := tokens.FindByID(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, other)

	ids, err = tokens.DeleteByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func newTodo(owner, title string, completed bool, created time.Time) *domain.Todo {
	return &domain.Todo{
		ID: utils.NewID(), UserID: owner, Title: title, Completed: completed,
		CreatedAt: created, UpdatedAt: created,
	}
}

func TestTodoRepoScopes(t *testing.T) {
	ctx := context.Background()
	todos := repo.NewTodoRepo(repotest.Open(t))

	td := newTodo("u1", "a", false, time.Now())
	require.NoError(t, todos.Create(ctx, td))

	got, err := todos.FindOwned(ctx, td.ID, "u1", domain.ScopeActive)
	require.NoError(t, err)
	require.NotNil(t, got)

	// 非本人
	got, err = todos.FindOwned(ctx, td.ID, "u2", domain.ScopeActive)
	require.NoError(t, err)
	assert.Nil(t, got)

	// 未删除的不在回收站
	got, err = todos.FindOwned(ctx, td.ID, "u1", domain.ScopeTrashed)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err := todos.SoftDelete(ctx, td)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, td.DeletedAt.Valid)

	got, err = todos.FindOwned(ctx, td.ID, "u1", domain.ScopeActive)
	require.NoError(t, err)
	assert.Nil(t, got)

	trashed, err := todos.FindOwned(ctx, td.ID, "u1", domain.ScopeTrashed)
	require.NoError(t, err)
	require.NotNil(t, trashed)
	assert.True(t, trashed.DeletedAt.Valid)

	require.NoError(t, todos.Restore(ctx, trashed))
	assert.False(t, trashed.DeletedAt.Valid)

	got, err = todos.FindOwned(ctx, td.ID, "u1", domain.ScopeActive)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.DeletedAt.Valid)
}

func TestTodoRepoListFilterSortPaginate(t *testing.T) {
	ctx := context.Background()
	todos := repo.NewTodoRepo(repotest.Open(t))

	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	for i, c := range []bool{true, false, true, false, false} {
		td := newTodo("u1", string(rune('a'+i)), c, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, todos.Create(ctx, td))
	}
	require.NoError(t, todos.Create(ctx, newTodo("u2", "z", true, base)))

	deleted := newTodo("u1", "gone", true, base.Add(time.Hour))
	require.NoError(t, todos.Create(ctx, deleted))
	_, err := todos.SoftDelete(ctx, deleted)
	require.NoError(t, err)

	items, total, err := todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Sort: "created_at", Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "e", items[0].Title)
	assert.Equal(t, "d", items[1].Title)

	items, _, err = todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Sort: "created_at", Desc: true, Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Title)

	yes := true
	items, total, err = todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Completed: &yes, Limit: 15})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, it := range items {
		assert.True(t, it.Completed)
	}

	// 非法排序列回落到 created_at
	items, _, err = todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Sort: "id; drop table todos", Limit: 15})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "a", items[0].Title)

	items, _, err = todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Sort: "title", Desc: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "e", items[0].Title)
}

func TestTodoRepoUpdateSelectedColumns(t *testing.T) {
	ctx := context.Background()
	todos := repo.NewTodoRepo(repotest.Open(t))

	content := "body"
	td := newTodo("u1", "title", false, time.Now())
	td.Content = &content
	require.NoError(t, todos.Create(ctx, td))

	stale := *td
	stale.Title = "should not be written"
	stale.Completed = true
	ok, err := todos.Update(ctx, &stale, "completed")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := todos.FindOwned(ctx, td.ID, "u1", domain.ScopeActive)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "title", got.Title)
	require.NotNil(t, got.Content)
	assert.Equal(t, "body", *got.Content)

	got.Content = nil
	ok, err = todos.Update(ctx, got, "content")
	require.NoError(t, err)
	assert.True(t, ok)
	again, err := todos.FindOwned(ctx, td.ID, "u1", domain.ScopeActive)
	require.NoError(t, err)
	assert.Nil(t, again.Content)
}

func TestTodoRepoUpdateSkipsTrashed(t *testing.T) {
	ctx := context.Background()
	todos := repo.NewTodoRepo(repotest.Open(t))

	td := newTodo("u1", "title", false, time.Now())
	require.NoError(t, todos.Create(ctx, td))

	loaded := *td
	deleted, err := todos.SoftDelete(ctx, td)
	require.NoError(t, err)
	require.True(t, deleted)

	// 读出之后被删：更新不命中任何行
	loaded.Title = "late write"
	ok, err := todos.Update(ctx, &loaded, "title")
	require.NoError(t, err)
	assert.False(t, ok)

	trashed, err := todos.FindOwned(ctx, td.ID, "u1", domain.ScopeTrashed)
	require.NoError(t, err)
	require.NotNil(t, trashed)
	assert.Equal(t, "title", trashed.Title)
}

func TestTodoRepoListCountOnly(t *testing.T) {
	ctx := context.Background()
	todos := repo.NewTodoRepo(repotest.Open(t))
	require.NoError(t, todos.Create(ctx, newTodo("u1", "a", false, time.Now())))

	items, total, err := todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Limit: 10, CountOnly: true})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.EqualValues(t, 1, total)

	items, total, err = todos.List(ctx, domain.TodoQuery{OwnerID: "u1", Limit: 10, Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.EqualValues(t, 1, total)
}
