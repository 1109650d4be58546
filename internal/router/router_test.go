package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"menuwise/internal/app"
	"menuwise/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		StoreDriver: config.DriverMemory,
		CORSOrigins: []string{"http://localhost:5173"},
	}
	a, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return NewRouter(a)
}

func do(r *gin.Engine, method, path, token string, body any) (int, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func register(t *testing.T, r *gin.Engine, email string) (string, string) {
	t.Helper()
	code, body := do(r, http.MethodPost, "/auth/register", "", gin.H{
		"name":          "Asha Rao",
		"email":         email,
		"password":      "secret123",
		"age":           30,
		"gender":        "female",
		"weight":        60,
		"height":        165,
		"activityLevel": "moderate",
	})
	require.Equal(t, http.StatusCreated, code, body)
	return body["token"].(string), body["user"].(map[string]any)["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)

	code, body := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownRoute(t *testing.T) {
	r := setupRouter(t)

	code, body := do(r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := setupRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/users/x"},
		{http.MethodPost, "/dishes"},
		{http.MethodPost, "/menus"},
		{http.MethodPost, "/menus/x/recalculate-health-score"},
		{http.MethodGet, "/ws"},
	} {
		code, body := do(r, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, route.path)
		assert.NotEmpty(t, body["message"], route.path)
	}
}

func TestEndToEndScoring(t *testing.T) {
	r := setupRouter(t)
	token, userID := register(t, r, "asha@example.com")

	code, body := do(r, http.MethodPost, "/menus", token, gin.H{
		"restaurantName": "Green Leaf",
		"imageUrl":       "https://cdn.test/menus/a.jpg",
		"assetId":        "menus/a.jpg",
		"location":       gin.H{"lng": 77.59, "lat": 12.97},
	})
	require.Equal(t, http.StatusCreated, code, body)
	menuID := body["menu"].(map[string]any)["id"].(string)

	code, body = do(r, http.MethodPost, "/dishes", token, gin.H{
		"name":            "Grilled Tofu Bowl",
		"menuId":          menuID,
		"category":        "main_course",
		"nutritionalInfo": gin.H{"protein": 25, "fiber": 6},
		"dietaryTags":     []string{"vegan"},
		"cookingMethod":   "grilled",
	})
	require.Equal(t, http.StatusCreated, code, body)
	d := body["dish"].(map[string]any)
	assert.Equal(t, float64(90), d["healthScore"])
	dishID := d["id"].(string)

	code, _ = do(r, http.MethodPost, "/menus/"+menuID+"/dishes", token, gin.H{"dishId": dishID})
	require.Equal(t, http.StatusOK, code)

	code, body = do(r, http.MethodPost, "/menus/"+menuID+"/recalculate-health-score", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(90), body["averageHealthScore"])

	code, body = do(r, http.MethodPost, "/dishes/"+dishID+"/rate", token, gin.H{"rating": 5, "taste": "umami"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), body["dish"].(map[string]any)["averageRating"])

	code, body = do(r, http.MethodPost, "/users/"+userID+"/update-health", token, gin.H{"dishRating": 5})
	require.Equal(t, http.StatusOK, code, body)

	code, body = do(r, http.MethodGet, "/users/"+userID+"/bmi", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "22.0", body["bmi"])

	code, body = do(r, http.MethodGet, "/menus/nearby/search?lat=12.97&lng=77.59", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
}

func TestSelfOnlyRoutes(t *testing.T) {
	r := setupRouter(t)
	token, _ := register(t, r, "asha@example.com")
	_, otherID := register(t, r, "ravi@example.com")

	code, _ := do(r, http.MethodPost, "/users/"+otherID+"/update-health", token, gin.H{"dishRating": 4})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(r, http.MethodGet, "/users/"+otherID, token, nil)
	assert.Equal(t, http.StatusOK, code)
}
