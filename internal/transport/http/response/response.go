package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"todo-api/internal/core/apperr"
)

// Resp 成功响应
type Resp struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrBody 失败响应
type ErrBody struct {
	Message string        `json:"message"`
	Errors  apperr.Fields `json:"errors,omitempty"`
}

func OK(msg string, data any) Resp {
	return Resp{Status: StatusSuccess, Message: msg, Data: data}
}

func Success(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, OK(msg, data))
}

// Body maps err to its status code and public body. Internal details never leave the process.
func Body(err error) (int, ErrBody) {
	status := apperr.StatusOf(err)
	var e *apperr.Error
	if errors.As(err, &e) && e.Kind != apperr.KindInternal {
		return status, ErrBody{Message: e.Message, Errors: e.Fields}
	}
	return status, ErrBody{Message: apperr.MsgServerError}
}

// Fail writes err and aborts the chain.
func Fail(c *gin.Context, err error) {
	status, body := Body(err)
	c.AbortWithStatusJSON(status, body)
}

// Abort writes a bare status with its default message.
func Abort(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, ErrBody{Message: msgFor(status)})
}
