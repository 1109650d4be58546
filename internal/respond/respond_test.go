package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"menuwise/internal/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestOKMergesPayload(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) {
		OK(c, http.StatusCreated, gin.H{"id": "42"})
	})

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "42", body["id"])
}

func TestErrorEnvelope(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) {
		Error(c, apperror.ValidationFailed("email", "email is invalid"))
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "email is invalid", body["message"])
	assert.Equal(t, "email", body["field"])
}

func TestErrorAuthShape(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) {
		Error(c, apperror.Unauthorized("token expired"))
	})

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, map[string]any{"message": "token expired"}, body)
}

func TestErrorHidesInternalDetail(t *testing.T) {
	code, body := serve(t, func(c *gin.Context) {
		Error(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body["message"], "connection refused")
	_, hasField := body["field"]
	assert.False(t, hasField)
}
