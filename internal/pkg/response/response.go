package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
)

// Response JSON API 统一信封，code 为 0 表示成功
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, apperrors.Success, "", data)
}

// SuccessWithMessage 200，附带提示信息
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, apperrors.Success, message, data)
}

// Created 201
func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, apperrors.Success, message, data)
}

// BadRequest 请求体无法绑定时使用，错误码为 ErrInvalidParams
func BadRequest(c *gin.Context, detail string) {
	ErrorWithCode(c, apperrors.ErrInvalidParams, detail)
}

// Unauthorized 令牌缺失或无法解析
func Unauthorized(c *gin.Context, detail string) {
	ErrorWithCode(c, apperrors.ErrUnauthorized, detail)
}

// HandleError 将业务错误转换为响应；非 AppError 统一视为内部错误
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := apperrors.ExtractCode(err)
	write(c, apperrors.GetHTTPStatus(code), code, apperrors.UserMessage(err), nil)
}

// ErrorWithCode 按错误码表输出状态码与消息
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	write(c, apperrors.GetHTTPStatus(code), code, apperrors.FormatError(code, details...), nil)
}
