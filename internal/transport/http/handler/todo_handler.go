package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/action"
	"todo-api/internal/domain"
	"todo-api/internal/transport/http/ez"
	mdw "todo-api/internal/transport/http/middleware"
	"todo-api/pkg/utils"
)

const (
	MsgTodoCreated  = "Todo created successfully."
	MsgTodoUpdated  = "Todo updated successfully."
	MsgTodoDeleted  = "Todo deleted successfully."
	MsgTodoRestored = "Todo restored successfully."
)

type TodoHandler struct{ acts *action.TodoActions }

func NewTodoHandler(acts *action.TodoActions) *TodoHandler { return &TodoHandler{acts: acts} }

func (h *TodoHandler) Priority() int { return 20 }

// listQuery 全部按字符串接收：非法的 page/per_page 回落到默认值而不是 422
type listQuery struct {
	Status  string `form:"status"`
	Sort    string `form:"sort"`
	Order   string `form:"order"`
	Page    string `form:"page"`
	PerPage string `form:"per_page"`
}

func (q listQuery) input() action.ListTodosInput {
	return action.ListTodosInput{
		Status:  q.Status,
		Sort:    q.Sort,
		Order:   q.Order,
		Page:    utils.AtoiDefault(q.Page, 0),
		PerPage: utils.AtoiDefault(q.PerPage, 0),
	}
}

type todoPage = *domain.Page[domain.TodoView]

func (h *TodoHandler) Mount(r ez.Routes) {
	e := r.Protected

	ez.RegisterAction(e, ez.Action[listQuery, todoPage]{
		Method: http.MethodGet,
		Path:   "/todos",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQuery) (todoPage, error) {
			au, _ := mdw.Caller(c)
			return h.acts.List(c.Request.Context(), au, in.input())
		},
	})

	ez.RegisterAction(e, ez.Action[action.CreateTodoInput, *domain.TodoView]{
		Method:  http.MethodPost,
		Path:    "/todos",
		Binder:  ez.BindJSON,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: MsgTodoCreated,
		Handler: func(c *gin.Context, in *action.CreateTodoInput) (*domain.TodoView, error) {
			au, _ := mdw.Caller(c)
			return h.acts.Create(c.Request.Context(), au, *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.TodoView]{
		Method: http.MethodGet,
		Path:   "/todos/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.TodoView, error) {
			au, _ := mdw.Caller(c)
			return h.acts.Get(c.Request.Context(), au, c.Param("id"))
		},
	})

	// PUT 与 PATCH 同义，都是部分更新
	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		ez.RegisterAction(e, ez.Action[action.UpdateTodoInput, *domain.TodoView]{
			Method:  m,
			Path:    "/todos/:id",
			Binder:  ez.BindJSON,
			Auth:    true,
			Message: MsgTodoUpdated,
			Handler: func(c *gin.Context, in *action.UpdateTodoInput) (*domain.TodoView, error) {
				au, _ := mdw.Caller(c)
				return h.acts.Update(c.Request.Context(), au, c.Param("id"), *in)
			},
		})
	}

	ez.RegisterAction(e, ez.Action[struct{}, any]{
		Method:  http.MethodDelete,
		Path:    "/todos/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: MsgTodoDeleted,
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			au, _ := mdw.Caller(c)
			_, err := h.acts.Delete(c.Request.Context(), au, c.Param("id"))
			return nil, err
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.TodoView]{
		Method:  http.MethodPatch,
		Path:    "/todos/:id/restore",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: MsgTodoRestored,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.TodoView, error) {
			au, _ := mdw.Caller(c)
			return h.acts.Restore(c.Request.Context(), au, c.Param("id"))
		},
	})
}
