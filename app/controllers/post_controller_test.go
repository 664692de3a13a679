package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postboard/app/auth"
	"postboard/app/blob"
	"postboard/app/models"
	"postboard/app/repositories/mock"
	"postboard/app/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "controller-secret"

type fakeBlobStore struct {
	uploads []blob.Object
}

func (f *fakeBlobStore) Upload(ctx context.Context, obj blob.Object) (string, error) {
	f.uploads = append(f.uploads, obj)
	return "https://cdn.example.com/uploads/" + obj.Filename, nil
}

type testEnv struct {
	router   *mux.Router
	postRepo *mock.PostRepository
	blobs    *fakeBlobStore
}

func setupTestPostController(t *testing.T) *testEnv {
	t.Helper()
	postRepo := mock.NewPostRepository()
	userRepo := mock.NewUserRepository(&models.User{
		ID:    models.NewIdentity("alice"),
		Name:  "Alice",
		Email: "alice@example.com",
	})
	blobs := &fakeBlobStore{}
	postService := services.NewPostService(postRepo, userRepo, blobs, nil)
	controller := NewPostController(postService, nil, 0)

	router := mux.NewRouter()
	router.Use(auth.NewResolver(testSecret, nil).Middleware)
	router.HandleFunc("/posts", controller.Index).Methods(http.MethodGet)
	router.HandleFunc("/posts", controller.Create).Methods(http.MethodPost)
	router.HandleFunc("/posts/{id}", controller.Edit).Methods(http.MethodPut)
	router.HandleFunc("/posts/{id}", controller.Delete).Methods(http.MethodDelete)

	return &testEnv{router: router, postRepo: postRepo, blobs: blobs}
}

func bearer(t *testing.T, id string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  id,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodePost(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response["error"]
}

func TestPostController(t *testing.T) {
	env := setupTestPostController(t)
	alice := bearer(t, "alice")
	bob := bearer(t, "bob")

	t.Run("create requires authentication", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/posts", "", `{"title":"T","content":"C","status":"published"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentication required", errorMessage(t, w))
		assert.Equal(t, 0, env.postRepo.Writes)
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/posts", "Bearer not-a-token", `{"title":"T","content":"C","status":"published"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	var postID string
	t.Run("create post ignores author in body", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/posts", alice,
			`{"title":"Hello","content":"World","category":"tech","status":"published","author":"mallory"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		response := decodePost(t, w)
		postID, _ = response["id"].(string)
		assert.NotEmpty(t, postID)
		assert.Equal(t, "alice", response["author"])
		assert.Equal(t, "Hello", response["title"])
		assert.Nil(t, response["imagePath"])
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "empty title", body: `{"title":"","content":"C","status":"draft"}`},
			{name: "empty content", body: `{"title":"T","content":"","status":"draft"}`},
			{name: "bad status", body: `{"title":"T","content":"C","status":"archived"}`},
			{name: "missing status", body: `{"title":"T","content":"C"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := env.do(t, http.MethodPost, "/posts", alice, tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/posts", alice, `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorMessage(t, w), "invalid JSON")
	})

	t.Run("list for owner includes drafts and author summary", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/posts", alice, `{"title":"Draft","content":"C","status":"draft"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = env.do(t, http.MethodGet, "/posts", alice, "")
		require.Equal(t, http.StatusOK, w.Code)

		var posts []models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
		require.Len(t, posts, 2)
		require.NotNil(t, posts[0].AuthorSummary)
		assert.Equal(t, "Alice", posts[0].AuthorSummary.Name)
	})

	t.Run("anonymous list shows only published", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/posts", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var posts []models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
		require.Len(t, posts, 1)
		assert.Equal(t, models.StatusPublished, posts[0].Status)
	})

	t.Run("list for user without posts is empty array", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/posts", bob, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("update by non-owner is forbidden", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/posts/"+postID, bob, `{"title":"Hijack","content":"C","status":"draft"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", errorMessage(t, w))

		stored, err := env.postRepo.GetByID(context.Background(), postID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", stored.Title)
	})

	t.Run("update unknown post", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/posts/999", alice, `{"title":"T","content":"C","status":"draft"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/posts/"+postID, alice, `{"title":"Edited","content":"New","status":"draft"}`)
		require.Equal(t, http.StatusOK, w.Code)

		response := decodePost(t, w)
		assert.Equal(t, "Edited", response["title"])
		assert.Equal(t, "", response["category"])
		assert.Equal(t, "draft", response["status"])
	})

	t.Run("update with image via multipart", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		require.NoError(t, form.WriteField("title", "With image"))
		require.NoError(t, form.WriteField("content", "Picture"))
		require.NoError(t, form.WriteField("status", "published"))
		part, err := form.CreateFormFile("image", "cat.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png bytes"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPut, "/posts/"+postID, &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.Header.Set("Authorization", alice)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		response := decodePost(t, w)
		assert.Equal(t, "https://cdn.example.com/uploads/cat.png", response["imagePath"])
		require.Len(t, env.blobs.uploads, 1)
		assert.Equal(t, []byte("png bytes"), env.blobs.uploads[0].Data)
	})

	t.Run("delete by non-owner is forbidden", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/posts/"+postID, bob, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("delete without credential", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/posts/"+postID, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("delete post", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/posts/"+postID, alice, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Deleted"}`, w.Body.String())

		w = env.do(t, http.MethodDelete, "/posts/"+postID, alice, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPostControllerInternalError(t *testing.T) {
	env := setupTestPostController(t)
	env.postRepo.Err = errors.New("disk on fire")

	w := env.do(t, http.MethodGet, "/posts", "", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorMessage(t, w))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrAuthenticationRequired, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrUpload, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
