package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-api/internal/action"
	"todo-api/internal/core/apperr"
	"todo-api/internal/domain"
	resp "todo-api/internal/transport/http/response"
)

const (
	KeyCaller = "caller"
	KeyUserID = "userId"
)

// Authenticator resolves a bearer string; implemented by service.TokenService.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error)
}

func bearerToken(h string) string {
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// AuthBearer 校验 Authorization: Bearer <token>，通过后把调用者放进上下文
func AuthBearer(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			resp.Fail(c, apperr.Unauthenticated())
			return
		}
		u, t, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			if !apperr.IsKind(err, apperr.KindUnauthenticated) {
				_ = c.Error(err)
			}
			resp.Fail(c, err)
			return
		}
		c.Set(KeyCaller, action.AuthenticatedUser{User: u, TokenID: t.ID})
		c.Set(KeyUserID, u.ID)
		c.Next()
	}
}

// Caller returns the authenticated user placed by AuthBearer.
func Caller(c *gin.Context) (action.AuthenticatedUser, bool) {
	v, ok := c.Get(KeyCaller)
	if !ok {
		return action.AuthenticatedUser{}, false
	}
	au, ok := v.(action.AuthenticatedUser)
	return au, ok && au.User != nil
}
