package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/action"
	"todo-api/internal/domain"
	"todo-api/internal/transport/http/ez"
	mdw "todo-api/internal/transport/http/middleware"
)

const (
	MsgRegistered = "User registered successfully."
	MsgLoggedIn   = "Logged in successfully."
	MsgLoggedOut  = "Logged out successfully."
)

type AuthHandler struct{ acts *action.AuthActions }

func NewAuthHandler(acts *action.AuthActions) *AuthHandler { return &AuthHandler{acts: acts} }

func (h *AuthHandler) Priority() int { return 10 }

// Mount /register /login（公共）与 /logout /user（需登录）
func (h *AuthHandler) Mount(r ez.Routes) {
	ez.RegisterAction(r.Public, ez.Action[action.RegisterInput, *action.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: MsgRegistered,
		Handler: func(c *gin.Context, in *action.RegisterInput) (*action.AuthResult, error) {
			return h.acts.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(r.Public, ez.Action[action.LoginInput, *action.AuthResult]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: MsgLoggedIn,
		Handler: func(c *gin.Context, in *action.LoginInput) (*action.AuthResult, error) {
			return h.acts.Login(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(r.Protected, ez.Action[struct{}, any]{
		Method:  http.MethodPost,
		Path:    "/logout",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: MsgLoggedOut,
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			au, _ := mdw.Caller(c)
			return nil, h.acts.Logout(c.Request.Context(), au)
		},
	})

	ez.RegisterAction(r.Protected, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/user",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			au, _ := mdw.Caller(c)
			return h.acts.CurrentUser(c.Request.Context(), au)
		},
	})
}
