package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"postboard/app/auth"
	"postboard/app/models"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// DefaultMaxUploadBytes bounds request bodies when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

const imageField = "image"

var errBadRequest = errors.New("bad request")

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService    *services.PostService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, logger *slog.Logger, maxUploadBytes int64) *PostController {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &PostController{
		postService:    postService,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Index lists posts visible to the caller.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	posts, err := pc.postService.List(r.Context(), caller)
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, posts)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		pc.sendServiceError(w, r, services.ErrAuthenticationRequired)
		return
	}

	fields, image, err := pc.decodePost(w, r)
	if err != nil {
		pc.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.Create(r.Context(), caller, fields, image)
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusCreated, post)
}

// Edit handles replacing an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok {
		pc.sendServiceError(w, r, services.ErrAuthenticationRequired)
		return
	}

	fields, image, err := pc.decodePost(w, r)
	if err != nil {
		pc.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.Update(r.Context(), caller, mux.Vars(r)["id"], fields, image)
	if err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFrom(r.Context())

	if err := pc.postService.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		pc.sendServiceError(w, r, err)
		return
	}
	pc.sendJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

// decodePost reads the four post fields and the optional image from a
// multipart form, an urlencoded form or a JSON body.
func (pc *PostController) decodePost(w http.ResponseWriter, r *http.Request) (models.PostFields, *services.Image, error) {
	var fields models.PostFields
	r.Body = http.MaxBytesReader(w, r.Body, pc.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(pc.maxUploadBytes); err != nil {
			return fields, nil, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
		}
		fields = formFields(r)
		image, err := readImage(r)
		if err != nil {
			return fields, nil, err
		}
		return fields, image, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return fields, nil, fmt.Errorf("%w: invalid form: %v", errBadRequest, err)
		}
		return formFields(r), nil, nil
	default:
		err := json.NewDecoder(r.Body).Decode(&fields)
		if err != nil && !errors.Is(err, io.EOF) {
			return fields, nil, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
		}
		return fields, nil, nil
	}
}

func formFields(r *http.Request) models.PostFields {
	return models.PostFields{
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		Category: r.FormValue("category"),
		Status:   models.Status(r.FormValue("status")),
	}
}

func readImage(r *http.Request) (*services.Image, error) {
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image field: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read image: %v", errBadRequest, err)
	}
	return &services.Image{Filename: header.Filename, Data: data}, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUpload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Helper methods for consistent response handling

func (pc *PostController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		pc.logger.Error("encode response", "event", "response_encode_failed", "error", err)
	}
}

func (pc *PostController) sendError(w http.ResponseWriter, message string, status int) {
	pc.sendJSON(w, status, map[string]string{"error": message})
}

func (pc *PostController) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		pc.logger.Error("request failed",
			"event", "request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		message = "Internal server error"
	}
	pc.sendError(w, message, status)
}

// WriteError writes the standard JSON error body. Routers use it for
// responses produced outside the controller.
func WriteError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": strings.TrimSpace(message)})
}
