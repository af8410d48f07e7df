package ez

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"

	"todo-api/internal/core/apperr"
	mdw "todo-api/internal/transport/http/middleware"
	resp "todo-api/internal/transport/http/response"
)

const MsgBadBody = "The request body must be valid JSON."

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// Routes 模块挂载时拿到的两个分组：公共 / 需要登录
type Routes struct {
	Public    EZ
	Protected EZ
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // 默认 POST
	Path    string // 例："/login"、"/todos/:id/restore"
	Binder  Binder
	Auth    bool   // 要求上下文里有调用者（分组需挂 AuthBearer）
	Status  int    // 成功状态码，默认 200
	Message string // 成功时的 message
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodPost
	}

	e.g.Handle(method, a.Path, func(c *gin.Context) {
		// 1) 鉴权
		if a.Auth {
			if _, ok := mdw.Caller(c); !ok {
				resp.Fail(c, apperr.Unauthenticated())
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
			if errors.Is(bindErr, io.EOF) {
				bindErr = nil // 空 body 当作 {}，交给字段校验报 required
			}
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			failBind(c, bindErr)
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)

		// 4) 统一错误映射
		if err != nil {
			fail(c, err)
			return
		}
		resp.Success(c, status, a.Message, out)
	})
}

func fail(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		_ = c.Error(err)
		resp.Abort(c, http.StatusGatewayTimeout)
		return
	}
	if apperr.IsKind(err, apperr.KindInternal) {
		_ = c.Error(err) // AccessLog 带 rid 打出完整错误链
	}
	resp.Fail(c, err)
}

func failBind(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		resp.Abort(c, http.StatusRequestEntityTooLarge)
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		resp.Fail(c, apperr.Invalid(typeErr.Field, typeMessage(typeErr.Field, typeErr.Type)))
		return
	}
	resp.Fail(c, apperr.Invalid("body", MsgBadBody))
}

func typeMessage(field string, t reflect.Type) string {
	label := strings.ReplaceAll(field, "_", " ")
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind := "a valid value"
	if t != nil {
		switch t.Kind() {
		case reflect.String:
			kind = "a string"
		case reflect.Bool:
			return fmt.Sprintf("The %s field must be true or false.", label)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			kind = "an integer"
		}
	}
	return fmt.Sprintf("The %s field must be %s.", label, kind)
}
