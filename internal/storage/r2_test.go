package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"menuwise/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewR2ClientRequiresConfig(t *testing.T) {
	_, err := NewR2Client(context.Background(), config.R2Config{Bucket: "menus"})
	require.Error(t, err)
}

func TestURL(t *testing.T) {
	c, err := NewR2Client(context.Background(), config.R2Config{
		Endpoint:      "https://account.r2.cloudflarestorage.com",
		AccessKey:     "key",
		SecretKey:     "secret",
		Bucket:        "menus",
		PublicBaseURL: "https://cdn.menuwise.app",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.menuwise.app/menus/u1/a.jpg", c.URL("menus/u1/a.jpg"))

	c, err = NewR2Client(context.Background(), config.R2Config{
		Endpoint:  "https://account.r2.cloudflarestorage.com/",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "menus",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://account.r2.cloudflarestorage.com/menus/a.jpg", c.URL("/a.jpg"))
}

func TestUploadPutsObject(t *testing.T) {
	var (
		mu          sync.Mutex
		method      string
		path        string
		contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewR2Client(context.Background(), config.R2Config{
		Endpoint:      srv.URL,
		AccessKey:     "key",
		SecretKey:     "secret",
		Bucket:        "menus",
		PublicBaseURL: "https://cdn.menuwise.app",
	})
	require.NoError(t, err)

	url, err := c.Upload(context.Background(), "menus/u1/a.png", bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.menuwise.app/menus/u1/a.png", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/menus/menus/u1/a.png", path)
	assert.Equal(t, "image/png", contentType)
}

func TestUploadSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewR2Client(context.Background(), config.R2Config{
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "menus",
	})
	require.NoError(t, err)

	_, err = c.Upload(context.Background(), "a.png", bytes.NewReader([]byte("png")), "image/png")
	assert.Error(t, err)
}
