package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint returns. Message is a stable,
// user-safe string; internals only ever reach the logs.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status int, ok bool, message string, data T, errDetail any) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   ok,
		Message:   message,
		Data:      data,
		Error:     errDetail,
	}
}

func Success[T any](c *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, envelope(c, status, true, message, data, nil))
}

func Error(c *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, envelope[any](c, status, false, message, nil, details))
}

// AbortError is Error for middleware: it also stops the handler chain.
func AbortError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, envelope[any](c, status, false, message, nil, details))
}
