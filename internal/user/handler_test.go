package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := newTestService(t)
	u := registered(t, svc)
	h := NewHandler(svc)

	r := gin.New()
	r.GET("/users/:id", h.Get)
	r.PUT("/users/:id", h.Update)
	r.POST("/users/:id/update-health", h.UpdateHealth)
	r.GET("/users/:id/bmi", h.BMI)
	r.POST("/users/:id/consume", h.Consume)
	return r, u
}

func do(r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestGetUserHidesPassword(t *testing.T) {
	r, u := setupTestRouter(t)

	w, body := do(r, http.MethodGet, "/users/"+u.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), u.Password)
}

func TestGetUserNotFound(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, body := do(r, http.MethodGet, "/users/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestUpdateHealthEndpoint(t *testing.T) {
	r, u := setupTestRouter(t)

	w, body := do(r, http.MethodPost, "/users/"+u.ID+"/update-health", gin.H{"dishRating": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(55), body["healthScore"])

	w, body = do(r, http.MethodPost, "/users/"+u.ID+"/update-health", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "dishRating", body["field"])

	w, _ = do(r, http.MethodPost, "/users/"+u.ID+"/update-health", gin.H{"dishRating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBMIEndpoint(t *testing.T) {
	r, u := setupTestRouter(t)

	w, body := do(r, http.MethodGet, "/users/"+u.ID+"/bmi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "22.9", body["bmi"])
	assert.Equal(t, "Normal weight", body["category"])
}

func TestUpdateEndpoint(t *testing.T) {
	r, u := setupTestRouter(t)

	w, body := do(r, http.MethodPut, "/users/"+u.ID, gin.H{"height": 180, "dietaryPreferences": []string{"vegan"}})
	require.Equal(t, http.StatusOK, w.Code)

	user := body["user"].(map[string]any)
	assert.Equal(t, float64(180), user["height"])
	assert.Equal(t, []any{"vegan"}, user["dietaryPreferences"])

	w, body = do(r, http.MethodPut, "/users/"+u.ID, gin.H{"gender": "robot"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "gender", body["field"])
}

func TestConsumeEndpoint(t *testing.T) {
	r, u := setupTestRouter(t)

	w, body := do(r, http.MethodPost, "/users/"+u.ID+"/consume", gin.H{"calories": 571})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(571), body["consumedCaloriesToday"])
	assert.Equal(t, float64(2000), body["remainingCalories"])

	w, _ = do(r, http.MethodPost, "/users/"+u.ID+"/consume", gin.H{"calories": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
