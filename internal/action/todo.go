package action

import (
	"context"
	"math"
	"strings"

	"todo-api/internal/core/apperr"
	"todo-api/internal/domain"
	"todo-api/pkg/utils"
)

const (
	MsgTodoNotFound = "Todo not found."

	StatusCompleted = "completed"
	StatusPending   = "pending"

	DefaultPerPage    = 15
	DefaultMaxPerPage = 100
)

type TodoActions struct {
	todos      domain.TodoRepository
	perPage    int
	maxPerPage int
}

// NewTodoActions; perPage/maxPerPage <= 0 fall back to 15/100.
func NewTodoActions(todos domain.TodoRepository, perPage, maxPerPage int) *TodoActions {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return &TodoActions{todos: todos, perPage: perPage, maxPerPage: maxPerPage}
}

type CreateTodoInput struct {
	Title   string  `json:"title"   validate:"required,max=100"`
	Content *string `json:"content" validate:"omitempty,max=1000"`
}

// UpdateTodoInput only touches the fields present in the payload.
type UpdateTodoInput struct {
	Title     utils.Opt[string] `json:"title"`
	Content   utils.Opt[string] `json:"content"`
	Completed utils.Opt[bool]   `json:"completed"`
}

// ListTodosInput: zero values mean "use the default".
type ListTodosInput struct {
	Status  string
	Sort    string
	Order   string
	Page    int
	PerPage int
}

// withOwner 显式挂载所属用户；调用者即所有者
func withOwner(t *domain.Todo, au AuthenticatedUser) *domain.TodoView {
	return &domain.TodoView{Todo: *t, User: au.User}
}

// normContent 去空白，空串视为 null
func normContent(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func ownerOf(au AuthenticatedUser) (string, error) {
	if au.User == nil || au.User.ID == "" {
		return "", apperr.Unauthenticated()
	}
	return au.User.ID, nil
}

func (a *TodoActions) List(ctx context.Context, au AuthenticatedUser, in ListTodosInput) (*domain.Page[domain.TodoView], error) {
	owner, err := ownerOf(au)
	if err != nil {
		return nil, err
	}

	q := domain.TodoQuery{OwnerID: owner, Sort: domain.SortCreatedAt, Desc: true}
	switch in.Status {
	case StatusCompleted:
		yes := true
		q.Completed = &yes
	case StatusPending:
		no := false
		q.Completed = &no
	}
	if _, ok := domain.SortColumns[in.Sort]; ok {
		q.Sort = in.Sort
	}
	if strings.EqualFold(in.Order, "asc") {
		q.Desc = false
	}

	page := in.Page
	if page <= 0 {
		page = 1
	}
	perPage := in.PerPage
	if perPage <= 0 {
		perPage = a.perPage
	}
	if perPage > a.maxPerPage {
		perPage = a.maxPerPage
	}
	q.Limit = perPage
	// 超大页码会让 offset 溢出；这种页必然为空，只取总数
	if page-1 > math.MaxInt/perPage {
		q.CountOnly = true
	} else {
		q.Offset = (page - 1) * perPage
	}

	items, total, err := a.todos.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal("list todos failed", err)
	}
	views := make([]domain.TodoView, 0, len(items))
	for i := range items {
		views = append(views, *withOwner(&items[i], au))
	}
	p := domain.NewPage(views, total, page, perPage)
	return &p, nil
}

func (a *TodoActions) Create(ctx context.Context, au AuthenticatedUser, in CreateTodoInput) (*domain.TodoView, error) {
	owner, err := ownerOf(au)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = normContent(in.Content)

	fields := apperr.Fields{}
	if err := checkStruct(in, fields); err != nil {
		return nil, apperr.Internal("validate todo input", err)
	}
	if err := apperr.Validation(fields); err != nil {
		return nil, err
	}

	t := &domain.Todo{ID: utils.NewID(), UserID: owner, Title: in.Title, Content: in.Content, Completed: false}
	if err := a.todos.Create(ctx, t); err != nil {
		return nil, apperr.Internal("create todo failed", err)
	}
	todoOps.WithLabelValues("create").Inc()
	return withOwner(t, au), nil
}

func (a *TodoActions) find(ctx context.Context, au AuthenticatedUser, id string, scope domain.Scope) (*domain.Todo, error) {
	owner, err := ownerOf(au)
	if err != nil {
		return nil, err
	}
	t, err := a.todos.FindOwned(ctx, id, owner, scope)
	if err != nil {
		return nil, apperr.Internal("load todo failed", err)
	}
	if t == nil {
		return nil, apperr.NotFound(MsgTodoNotFound)
	}
	return t, nil
}

func (a *TodoActions) Get(ctx context.Context, au AuthenticatedUser, id string) (*domain.TodoView, error) {
	t, err := a.find(ctx, au, id, domain.ScopeActive)
	if err != nil {
		return nil, err
	}
	return withOwner(t, au), nil
}

func validateUpdate(in *UpdateTodoInput) apperr.Fields {
	fields := apperr.Fields{}
	if in.Title.Set {
		switch {
		case in.Title.Invalid:
			fields.Add("title", message("title", "string", ""))
		case in.Title.Null:
			fields.Add("title", message("title", "required", ""))
		default:
			in.Title.Val = strings.TrimSpace(in.Title.Val)
			checkVar(fields, "title", in.Title.Val, "required,max=100")
		}
	}
	if in.Content.Set {
		switch {
		case in.Content.Invalid:
			fields.Add("content", message("content", "string", ""))
		case !in.Content.Null:
			if c := normContent(&in.Content.Val); c != nil {
				in.Content.Val = *c
				checkVar(fields, "content", in.Content.Val, "max=1000")
			} else {
				in.Content = utils.Null[string]()
			}
		}
	}
	if in.Completed.Set && !in.Completed.Present() {
		fields.Add("completed", message("completed", "boolean", ""))
	}
	return fields
}

func (a *TodoActions) Update(ctx context.Context, au AuthenticatedUser, id string, in UpdateTodoInput) (*domain.TodoView, error) {
	if _, err := ownerOf(au); err != nil {
		return nil, err
	}
	if err := apperr.Validation(validateUpdate(&in)); err != nil {
		return nil, err
	}
	t, err := a.find(ctx, au, id, domain.ScopeActive)
	if err != nil {
		return nil, err
	}

	var cols []string
	if in.Title.Set {
		t.Title = in.Title.Val
		cols = append(cols, "title")
	}
	if in.Content.Set {
		if in.Content.Null {
			t.Content = nil
		} else {
			c := in.Content.Val
			t.Content = &c
		}
		cols = append(cols, "content")
	}
	if in.Completed.Set {
		t.Completed = in.Completed.Val
		cols = append(cols, "completed")
	}
	ok, err := a.todos.Update(ctx, t, cols...)
	if err != nil {
		return nil, apperr.Internal("update todo failed", err)
	}
	if !ok {
		// 读取之后被并发删除
		return nil, apperr.NotFound(MsgTodoNotFound)
	}
	todoOps.WithLabelValues("update").Inc()
	return withOwner(t, au), nil
}

// Delete soft-deletes an active todo.
func (a *TodoActions) Delete(ctx context.Context, au AuthenticatedUser, id string) (bool, error) {
	t, err := a.find(ctx, au, id, domain.ScopeActive)
	if err != nil {
		return false, err
	}
	ok, err := a.todos.SoftDelete(ctx, t)
	if err != nil {
		return false, apperr.Internal("delete todo failed", err)
	}
	if !ok {
		// 并发下已被删除
		return false, apperr.NotFound(MsgTodoNotFound)
	}
	todoOps.WithLabelValues("delete").Inc()
	return true, nil
}

// Restore brings back a soft-deleted todo.
func (a *TodoActions) Restore(ctx context.Context, au AuthenticatedUser, id string) (*domain.TodoView, error) {
	t, err := a.find(ctx, au, id, domain.ScopeTrashed)
	if err != nil {
		return nil, err
	}
	if err := a.todos.Restore(ctx, t); err != nil {
		return nil, apperr.Internal("restore todo failed", err)
	}
	todoOps.WithLabelValues("restore").Inc()
	return withOwner(t, au), nil
}
