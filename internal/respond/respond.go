package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"menuwise/internal/apperror"

	"github.com/gin-gonic/gin"
)

// OK writes a success envelope. payload keys are merged next to "success".
func OK(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error maps err onto its HTTP status and writes the failure envelope.
// Authentication failures use the bare {message} shape.
func Error(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	msg := apperror.Message(err)

	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}

	if errors.Is(err, apperror.ErrAuth) {
		c.AbortWithStatusJSON(status, gin.H{"message": msg})
		return
	}

	body := gin.H{"success": false, "message": msg}
	if field := apperror.Field(err); field != "" {
		body["field"] = field
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest reports a body or query that could not be decoded.
func BadRequest(c *gin.Context, msg string) {
	Error(c, apperror.ValidationFailed("", msg))
}
