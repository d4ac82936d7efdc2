package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/muhammedshamil8/CivicGuard/pkg/errors"
)

// APIResponse is the envelope every JSON endpoint returns
type APIResponse struct {
	Success    bool        `json:"success" example:"true"`
	StatusCode int         `json:"statusCode" example:"200"`
	Message    string      `json:"message,omitempty" example:"ok"`
	Code       string      `json:"code,omitempty" example:"VALIDATION_FAILED"`
	Data       interface{} `json:"data,omitempty"`
}

func write(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, APIResponse{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message ...string) {
	write(c, http.StatusOK, data, first(message))
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	write(c, http.StatusCreated, data, first(message))
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       first(errorCode),
	})
}

// ErrorWithData sends an error response that still carries a payload,
// e.g. a report whose status change stuck while a later step failed.
func ErrorWithData(c *gin.Context, statusCode int, message, errorCode string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Code:       errorCode,
		Data:       data,
	})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// TooManyRequests sends a 429 error with limiter details in data
func TooManyRequests(c *gin.Context, data interface{}) {
	ErrorWithData(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", "RATE_LIMITED", data)
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// BindJSONError handles JSON decode errors in request body
func BindJSONError(c *gin.Context, err error) {
	BadRequest(c, "Invalid request format", "INVALID_JSON")
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	var e *apperrors.Error
	if !apperrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindAuth:
		if e.Reason == apperrors.NetworkUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusUnauthorized
	case apperrors.KindUpload, apperrors.KindAnchor:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the typed error as a response. Untyped errors become a
// generic 500 so internal detail never leaks.
func FromError(c *gin.Context, err error) {
	var e *apperrors.Error
	if !apperrors.As(err, &e) {
		InternalServerError(c, "Internal server error", "INTERNAL_ERROR")
		return
	}
	Error(c, StatusFor(err), e.Message, e.Code)
}

func first(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
