package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postJSONRequest is postJSON with a bearer token attached.
func postJSONRequest(t *testing.T, app *fiber.App, path string, body any, token string) (*http.Response, error) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp, nil
}

// TestFeedFlow exercises the full API surface end to end against an
// in-memory SQLite database: signup, login, posting, liking, commenting.
func TestFeedFlow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:ripple_flow?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:   "integration-test-secret",
		UploadDir:   t.TempDir(),
		MaxUploadMB: 5,
		Env:         "test",
	}
	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)

	var aliceToken, bobToken string

	t.Run("signup", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/signup", map[string]string{
			"username":        "alice",
			"email":           "alice@example.com",
			"password":        "hunter22",
			"confirmPassword": "hunter22",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		aliceToken = body["token"].(string)
		require.NotEmpty(t, aliceToken)

		resp = postJSON(t, app, "/api/auth/signup", map[string]string{
			"username":        "bob",
			"email":           "bob@example.com",
			"password":        "hunter22",
			"confirmPassword": "hunter22",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		body = decodeBody(t, resp)
		bobToken = body["token"].(string)
	})

	t.Run("signup conflict on reused email", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/signup", map[string]string{
			"username":        "alice2",
			"email":           "alice@example.com",
			"password":        "hunter22",
			"confirmPassword": "hunter22",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("login", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "hunter22",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		aliceToken = body["token"].(string)
	})

	var postID float64

	t.Run("create post", func(t *testing.T) {
		req := multipartRequest(t, "/api/posts", map[string]string{"text": "first ripple"})
		req.Header.Set("Authorization", "Bearer "+aliceToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeBody(t, resp)
		postID = body["id"].(float64)
		assert.Equal(t, "first ripple", body["text"])
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, float64(0), body["likes_count"])
	})

	t.Run("create post requires auth", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/api/posts", map[string]string{"text": "anon"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("feed lists newest first", func(t *testing.T) {
		req := multipartRequest(t, "/api/posts", map[string]string{"text": "second ripple"})
		req.Header.Set("Authorization", "Bearer "+bobToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		posts := body["posts"].([]any)
		require.Len(t, posts, 2)
		assert.Equal(t, "second ripple", posts[0].(map[string]any)["text"])
		assert.Equal(t, "first ripple", posts[1].(map[string]any)["text"])

		pagination := body["pagination"].(map[string]any)
		assert.Equal(t, float64(1), pagination["currentPage"])
		assert.Equal(t, float64(1), pagination["totalPages"])
		assert.Equal(t, float64(2), pagination["totalPosts"])
	})

	likeURL := fmt.Sprintf("/api/posts/%d/like", int(postID))

	t.Run("like toggles on", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, likeURL, nil)
		req.Header.Set("Authorization", "Bearer "+bobToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["liked"])
		post := body["post"].(map[string]any)
		assert.Equal(t, float64(1), post["likes_count"])
		assert.Equal(t, true, post["liked"])
	})

	t.Run("like toggles off", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, likeURL, nil)
		req.Header.Set("Authorization", "Bearer "+bobToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["liked"])
		post := body["post"].(map[string]any)
		assert.Equal(t, float64(0), post["likes_count"])
	})

	t.Run("comment on post", func(t *testing.T) {
		b, _ := postJSONRequest(t, app, fmt.Sprintf("/api/posts/%d/comment", int(postID)),
			map[string]string{"text": "welcome aboard"}, bobToken)
		require.Equal(t, http.StatusOK, b.StatusCode)

		body := decodeBody(t, b)
		assert.Equal(t, float64(1), body["comments_count"])
		comments := body["comments"].([]any)
		require.Len(t, comments, 1)
		assert.Equal(t, "bob", comments[0].(map[string]any)["username"])
		assert.Equal(t, "welcome aboard", comments[0].(map[string]any)["text"])
	})

	t.Run("empty comment rejected", func(t *testing.T) {
		resp, _ := postJSONRequest(t, app, fmt.Sprintf("/api/posts/%d/comment", int(postID)),
			map[string]string{"text": "  "}, bobToken)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("single post carries comments and counts", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", int(postID)), nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, float64(1), body["comments_count"])
		comments := body["comments"].([]any)
		require.Len(t, comments, 1)
		assert.Equal(t, "welcome aboard", comments[0].(map[string]any)["text"])
	})

	t.Run("missing post is 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/424242", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/424242/like", nil)
		req.Header.Set("Authorization", "Bearer "+bobToken)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("health endpoints", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
