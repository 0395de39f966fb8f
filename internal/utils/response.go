package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/deadpan/internal/apperrors"
	"github.com/user/deadpan/internal/logging"
)

// Response 统一API响应结构
type Response struct {
	Code    int               `json:"code"`             // 状态码
	Message string            `json:"message"`          // 消息
	Data    interface{}       `json:"data"`             // 数据
	Success bool              `json:"success"`          // 是否成功
	Errors  map[string]string `json:"errors,omitempty"` // 字段级校验错误
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// SuccessWithMessage 返回成功响应并自定义消息
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
		Success: true,
	})
}

// Created 返回 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
		Success: true,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// Fail 按业务错误类型输出响应，未知错误一律 500 且不暴露细节
func Fail(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		// 只包装了哨兵错误时按哨兵映射状态码
		if status := apperrors.HTTPStatus(err); status < http.StatusInternalServerError {
			appErr = &apperrors.AppError{Status: status, Message: http.StatusText(status), Err: err}
		} else {
			appErr = apperrors.Internal(err)
		}
	}

	if appErr.Status >= http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("[API] 请求处理失败")
	}

	c.AbortWithStatusJSON(appErr.Status, Response{
		Code:    appErr.Status,
		Message: appErr.Message,
		Success: false,
		Errors:  appErr.Fields,
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未登录"
	}
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 返回403错误
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "没有权限"
	}
	Error(c, http.StatusForbidden, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	Error(c, http.StatusNotFound, message)
}
