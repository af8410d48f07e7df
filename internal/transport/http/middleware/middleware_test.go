package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"todo-api/internal/core/apperr"
	"todo-api/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeAuth struct {
	tokens map[string]string // bearer -> user id
	err    error
}

func (f fakeAuth) Authenticate(_ context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	uid, ok := f.tokens[bearer]
	if !ok {
		return nil, nil, apperr.Unauthenticated()
	}
	return &domain.User{ID: uid}, &domain.AccessToken{ID: "tok-" + uid, UserID: uid}, nil
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer "))
	assert.Equal(t, "", bearerToken(""))
}

func TestAuthBearer(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthBearer(fakeAuth{tokens: map[string]string{"good": "u1"}}), func(c *gin.Context) {
		au, ok := Caller(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": au.User.ID, "tok": au.TokenID})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","tok":"tok-u1"}`, w.Body.String())

	for _, h := range []string{"", "Bearer bad", "Token good"} {
		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		w = serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.JSONEq(t, `{"message":"Unauthenticated."}`, w.Body.String())
	}
}

func TestAuthBearerStoreFailure(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthBearer(fakeAuth{err: apperr.Internal("db down", errors.New("dial"))}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server Error"}`, w.Body.String())
}

func TestCallerMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := Caller(c)
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(KeyRequestID)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "upstream-1")
	w = serve(r, req)
	assert.Equal(t, "upstream-1", w.Header().Get(KeyRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, strings.Repeat("x", 500))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestMaxBodyBytesDeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"way too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.JSONEq(t, `{"message":"Gateway Timeout"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server Error"}`, w.Body.String())
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestConcurrencyLimit(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20*time.Millisecond), ConcurrencyLimit(1))
	hold := make(chan struct{})
	entered := make(chan struct{})
	r.GET("/hold", func(c *gin.Context) {
		close(entered)
		<-hold
		c.String(http.StatusOK, "done")
	})
	r.GET("/next", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() {
		done <- serve(r, httptest.NewRequest(http.MethodGet, "/hold", nil)).Code
	}()
	<-entered

	// 唯一的名额被占用，等到超时仍拿不到
	w := serve(r, httptest.NewRequest(http.MethodGet, "/next", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(hold)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestAccessLogMasksAndEscalates(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/err", func(c *gin.Context) {
		_ = c.Error(errors.New("db down"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/ok?token=abc&page=2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/err", nil))

	entries := logs.FilterMessage("HTTP").AllUntimed()
	require.Len(t, entries, 2)

	q := entries[0].ContextMap()["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["token"])
	assert.Equal(t, []string{"2"}, q["page"])
	assert.Equal(t, zap.InfoLevel, entries[0].Level)

	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}
