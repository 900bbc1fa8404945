package utils

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	Action            string `json:"action,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
	Details           string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   KindInternal.String(),
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Error: KindInvalidInput.String(), Message: message, Details: details})
}

// RespondError maps err onto the error taxonomy and writes the user-facing body.
// Callers must return immediately afterwards.
func RespondError(c *gin.Context, err error) {
	kind := KindOf(err)
	retry := RetryAfterOf(err)
	message, action := UserMessage(kind, retry)

	logger := GetLogger()
	if kind.IsTransient() || kind == KindInternal {
		logger.Error("request failed", zap.String("kind", kind.String()), zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Info("request rejected", zap.String("kind", kind.String()), zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := ErrorResponse{
		Error:   kind.String(),
		Message: message,
		Action:  action,
	}
	if retry > 0 {
		body.RetryAfterSeconds = RetryAfterSeconds(retry)
		c.Header("Retry-After", strconv.Itoa(body.RetryAfterSeconds))
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Detail != "" && kind.ExposesDetail() {
		body.Details = appErr.Detail
	}
	c.AbortWithStatusJSON(kind.HTTPStatus(), body)
}
