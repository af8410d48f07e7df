package action

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"todo-api/internal/core/apperr"
	"todo-api/internal/domain"
	"todo-api/pkg/utils"
)

// MsgBadCredentials is reported on the email field for unknown email and wrong password alike.
const MsgBadCredentials = "These credentials do not match our records."

// bcrypt 上限
const maxPasswordBytes = 72

// TokenIssuer is the part of the token subsystem the auth actions need.
type TokenIssuer interface {
	Issue(ctx context.Context, u *domain.User) (string, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAll(ctx context.Context, userID string) error
}

type AuthActions struct {
	users  domain.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthActions(users domain.UserRepository, tokens TokenIssuer, l *zap.Logger) *AuthActions {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthActions{users: users, tokens: tokens, log: l}
}

type RegisterInput struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (a *AuthActions) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	fields := apperr.Fields{}
	if err := checkStruct(in, fields); err != nil {
		return nil, apperr.Internal("validate register input", err)
	}
	if _, bad := fields["password"]; !bad && len(in.Password) > maxPasswordBytes {
		fields.Add("password", message("password", "max", "72"))
	}
	if _, bad := fields["email"]; !bad {
		existing, err := a.users.FindByEmail(ctx, in.Email)
		if err != nil {
			return nil, apperr.Internal("lookup user failed", err)
		}
		if existing != nil {
			fields.Add("email", message("email", "unique", ""))
		}
	}
	if err := apperr.Validation(fields); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password failed", err)
	}
	u := &domain.User{ID: utils.NewID(), Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Invalid("email", message("email", "unique", ""))
		}
		return nil, apperr.Internal("create user failed", err)
	}

	token, err := a.tokens.Issue(ctx, u)
	if err != nil {
		return nil, apperr.Internal("issue token failed", err)
	}
	authEvents.WithLabelValues("register").Inc()
	a.log.Info("user registered", zap.String("user_id", u.ID))
	return &AuthResult{User: u, Token: token}, nil
}

// 未知邮箱时也跑一次 bcrypt，响应耗时与密码错误一致
var dummyHash = sync.OnceValue(func() string {
	h, _ := utils.HashPassword("not-a-real-password")
	return h
})

func (a *AuthActions) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)

	fields := apperr.Fields{}
	if err := checkStruct(in, fields); err != nil {
		return nil, apperr.Internal("validate login input", err)
	}
	if err := apperr.Validation(fields); err != nil {
		return nil, err
	}

	u, err := a.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("lookup user failed", err)
	}
	if u == nil {
		utils.CheckPassword(in.Password, dummyHash())
		authEvents.WithLabelValues("login_failed").Inc()
		return nil, apperr.Invalid("email", MsgBadCredentials)
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		authEvents.WithLabelValues("login_failed").Inc()
		return nil, apperr.Invalid("email", MsgBadCredentials)
	}

	// 单点登录：先吊销旧令牌
	if err := a.tokens.RevokeAll(ctx, u.ID); err != nil {
		return nil, apperr.Internal("revoke tokens failed", err)
	}
	token, err := a.tokens.Issue(ctx, u)
	if err != nil {
		return nil, apperr.Internal("issue token failed", err)
	}
	authEvents.WithLabelValues("login").Inc()
	return &AuthResult{User: u, Token: token}, nil
}

// Logout revokes only the token presented on the current request.
func (a *AuthActions) Logout(ctx context.Context, au AuthenticatedUser) error {
	if au.User == nil || au.TokenID == "" {
		return apperr.Unauthenticated()
	}
	if err := a.tokens.Revoke(ctx, au.TokenID); err != nil {
		return apperr.Internal("revoke token failed", err)
	}
	authEvents.WithLabelValues("logout").Inc()
	return nil
}

func (a *AuthActions) CurrentUser(_ context.Context, au AuthenticatedUser) (*domain.User, error) {
	if au.User == nil {
		return nil, apperr.Unauthenticated()
	}
	return au.User, nil
}
