package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"postboard/app/auth"
	"postboard/app/config"
	"postboard/app/routes"
	"postboard/app/services"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// serveOptions are flag overrides for the environment configuration.
type serveOptions struct {
	port       string
	corsOrigin string
	store      string
	dataDir    string
	mongoURI   string
	blob       string
	uploadsDir string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the posts API server",
		Long: `Run the posts API server.

Settings come from the environment (and an optional .env file); flags
override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return RunAppServer(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.port, "port", "", "HTTP port (PORT)")
	flags.StringVar(&opts.corsOrigin, "cors-origin", "", "Allowed CORS origin (CORS_ORIGIN)")
	flags.StringVar(&opts.store, "store", "", "Store driver: badger, mongo or postgres (STORE_DRIVER)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Badger data directory (DATA_DIR)")
	flags.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI (MONGO_URI)")
	flags.StringVar(&opts.blob, "blob", "", "Blob driver: local or cloudinary (BLOB_DRIVER)")
	flags.StringVar(&opts.uploadsDir, "uploads-dir", "", "Directory for locally stored uploads (UPLOADS_DIR)")
	return cmd
}

// apply copies flags the user set over cfg.
func (o serveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("cors-origin") {
		cfg.CORSOrigin = o.corsOrigin
	}
	if flags.Changed("store") {
		cfg.StoreDriver = o.store
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("mongo-uri") {
		cfg.MongoURI = o.mongoURI
	}
	if flags.Changed("blob") {
		cfg.BlobDriver = o.blob
	}
	if flags.Changed("uploads-dir") {
		cfg.UploadsDir = o.uploadsDir
	}
}

// RunAppServer wires the stores, media store and router for cfg and serves
// HTTP until ctx is cancelled.
func RunAppServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			logger.Error("close store", "event", "store_close_failed", "error", err)
		}
	}()

	blobs, err := newBlobStore(cfg, logger)
	if err != nil {
		return err
	}

	handler := routes.Handler(routes.Dependencies{
		PostService:    services.NewPostService(st.posts, st.users, blobs, logger),
		Resolver:       auth.NewResolver(cfg.JWTSecret, logger),
		Logger:         logger,
		UploadsDir:     localUploadsDir(cfg),
		CORSOrigin:     cfg.CORSOrigin,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	logger.Info("server listening",
		"event", "server_started",
		"addr", ln.Addr().String(),
		"store", cfg.Store(),
		"blob", cfg.BlobDriver,
		"version", Version,
	)
	return runServer(ctx, &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, ln, logger)
}

func localUploadsDir(cfg config.Config) string {
	if cfg.BlobDriver != config.BlobLocal {
		return ""
	}
	return cfg.UploadsDir
}

// runServer serves on ln until ctx is done, then drains in-flight requests.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "event", "server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped", "event", "server_stopped")
	return nil
}
