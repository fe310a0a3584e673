package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON error envelope every failed request renders.
type Err struct {
	statusCode int

	RequestID string `json:"request_id"`
	Msg       string `json:"msg"`
}

func RenderErr(ctx *gin.Context, err *Err) {
	err.RequestID = requestid.Get(ctx)

	if err.statusCode >= http.StatusInternalServerError {
		zap.L().Error("server error",
			zap.String("request_id", err.RequestID),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.String("msg", err.Msg),
		)

		// Internal details stay in the logs.
		err.Msg = "internal server error"
	}

	ctx.AbortWithStatusJSON(err.statusCode, err)
}

func NewErr(statusCode int, err error) *Err {
	return &Err{
		statusCode: statusCode,
		Msg:        err.Error(),
	}
}

func ErrBadRequest(err error) *Err {
	return NewErr(http.StatusBadRequest, err)
}

func ErrUnauthorized(msg string) *Err {
	return &Err{
		statusCode: http.StatusUnauthorized,
		Msg:        msg,
	}
}

func ErrWrongCredentials(err error) *Err {
	return NewErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(msg string) *Err {
	return &Err{
		statusCode: http.StatusForbidden,
		Msg:        msg,
	}
}

func ErrNotFound(resource, field string, value interface{}) *Err {
	return &Err{
		statusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%v with %v %v not found", resource, field, value),
	}
}

func ErrConflict(err error) *Err {
	return NewErr(http.StatusConflict, err)
}

func ErrInternalServerError(err error) *Err {
	return NewErr(http.StatusInternalServerError, err)
}
