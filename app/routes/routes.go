package routes

import (
	"io/fs"
	"log/slog"
	"net/http"

	"postboard/app/auth"
	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	PostService *services.PostService
	Resolver    *auth.Resolver
	Logger      *slog.Logger

	// UploadsDir is served under /uploads/ when set.
	UploadsDir     string
	CORSOrigin     string
	MaxUploadBytes int64
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// Apply global middleware
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recoverer(deps.Logger))

	postController := controllers.NewPostController(deps.PostService, deps.Logger, deps.MaxUploadBytes)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	}).Methods(http.MethodGet)

	if deps.UploadsDir != "" {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(filesOnly{http.Dir(deps.UploadsDir)})),
		).Methods(http.MethodGet, http.MethodHead)
	}

	// Posts are mounted under /api and at the root.
	for _, prefix := range []string{"/api/posts", "/posts"} {
		posts := router.PathPrefix(prefix).Subrouter()
		posts.Use(middleware.ContentTypeJSON)
		if deps.Resolver != nil {
			posts.Use(deps.Resolver.Middleware)
		}
		posts.HandleFunc("", postController.Index).Methods(http.MethodGet)
		posts.HandleFunc("", postController.Create).Methods(http.MethodPost)
		posts.HandleFunc("/{id}", postController.Edit).Methods(http.MethodPut)
		posts.HandleFunc("/{id}", postController.Delete).Methods(http.MethodDelete)
	}

	return router
}

// filesOnly serves regular files and hides directories, so uploads of
// draft posts cannot be discovered by listing.
type filesOnly struct {
	root http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// Handler wraps the router with CORS so preflight requests are answered
// before routing.
func Handler(deps Dependencies) http.Handler {
	return middleware.CORS(deps.CORSOrigin)(SetupRoutes(deps))
}
