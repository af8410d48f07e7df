package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"todo-api/internal/action"
	"todo-api/internal/core/server"
	"todo-api/internal/transport/http/ez"
	"todo-api/internal/transport/http/handler"
	mdw "todo-api/internal/transport/http/middleware"
)

// Options 保护性中间件的参数；零值表示不限制
type Options struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
	MaxInFlight    int64
	MaxBodyBytes   int64
}

type Deps struct {
	Auth  *action.AuthActions
	Todos *action.TodoActions
	Authn mdw.Authenticator
}

func NewAPIEngine(l *zap.Logger, d Deps, o Options) *gin.Engine {
	r := server.NewRouter(l, o.AllowOrigins)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.Timeout(o.RequestTimeout),
		mdw.ConcurrencyLimit(o.MaxInFlight),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 前缀
	api := r.Group("/api")

	// 鉴权分组
	protected := api.Group("")
	protected.Use(mdw.AuthBearer(d.Authn))

	MountAll(ez.Routes{Public: ez.New(api), Protected: ez.New(protected)},
		handler.NewTodoHandler(d.Todos),
		handler.NewAuthHandler(d.Auth),
	)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})
	return r
}
