// Package response is the uniform JSON envelope every handler replies with.
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the wire envelope.
type Response struct {
	Success   bool        `json:"success"`
	Code      int         `json:"code"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// JSON writes an envelope with the given status and payload.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Code:      statusCode,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// Error writes a failure envelope.
func Error(c *gin.Context, statusCode int, message string, errs ...error) {
	resp := Response{
		Success:   false,
		Code:      statusCode,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
	if len(errs) > 0 && errs[0] != nil {
		resp.Error = errs[0].Error()
	}
	c.JSON(statusCode, resp)
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// SuccessWithMessage writes a 200 with a message and data.
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Code:      http.StatusOK,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// Created writes a 201 with data.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// BadRequest writes a 400.
func BadRequest(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusBadRequest, message, errs...)
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusUnauthorized, message, errs...)
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusForbidden, message, errs...)
}

// NotFound writes a 404.
func NotFound(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusNotFound, message, errs...)
}

// Conflict writes a 409.
func Conflict(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusConflict, message, errs...)
}

// TooManyRequests writes a 429.
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// InternalError writes a 500.
func InternalError(c *gin.Context, message string, errs ...error) {
	Error(c, http.StatusInternalServerError, message, errs...)
}
