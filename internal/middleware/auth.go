package middleware

import (
	"strings"

	"menuwise/internal/apperror"
	"menuwise/internal/respond"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respond.Error(c, apperror.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			respond.Error(c, apperror.Unauthorized("invalid authorization format, use 'Bearer <token>'"))
			return
		}

		userID, err := verifier.Verify(parts[1])
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireSelf only lets a request through when the :id path parameter is
// the authenticated user.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) != UserID(c) {
			respond.Error(c, apperror.Forbidden("you can only modify your own profile"))
			return
		}
		c.Next()
	}
}

// UserID returns the id set by AuthMiddleware, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// SetUserID is used by tests and internal callers that authenticate by
// other means.
func SetUserID(c *gin.Context, id string) {
	c.Set(userIDKey, id)
}
