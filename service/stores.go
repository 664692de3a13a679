package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"postboard/app/blob"
	"postboard/app/config"
	"postboard/app/repositories"
	"postboard/app/repositories/mongostore"
	"postboard/app/repositories/pgstore"

	"github.com/dgraph-io/badger/v4"
)

// stores bundles the repositories of one backend with its shutdown hook.
type stores struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	close func(ctx context.Context) error
}

// badgerLogger routes badger's internal logging through slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func openBadger(dir string, logger *slog.Logger) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(badgerLogger{logger: logger}))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

// openStores connects the backend selected by cfg.
func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Store() {
	case config.StoreBadger:
		db, err := openBadger(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("store ready", "event", "store_connected", "driver", config.StoreBadger, "dir", cfg.DataDir)
		return &stores{
			posts: repositories.NewBadgerPostRepository(db),
			users: repositories.NewBadgerUserRepository(db),
			close: func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		logger.Info("store ready", "event", "store_connected", "driver", config.StoreMongo, "database", cfg.MongoDatabase)
		return &stores{
			posts: client.Posts(),
			users: client.Users(),
			close: client.Close,
		}, nil

	case config.StorePostgres:
		pg, err := pgstore.Connect(ctx, cfg.PostgresDSN, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		logger.Info("store ready", "event", "store_connected", "driver", config.StorePostgres)
		return &stores{
			posts: pg.Posts(),
			users: pg.Users(),
			close: func(context.Context) error { return pg.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store())
}

// newBlobStore builds the media store selected by cfg.
func newBlobStore(cfg config.Config, logger *slog.Logger) (blob.Store, error) {
	switch cfg.BlobDriver {
	case config.BlobLocal:
		return &blob.LocalStore{
			Dir:       cfg.UploadsDir,
			Folder:    cfg.UploadFolder,
			BaseURL:   cfg.BaseURL(),
			URLPrefix: "uploads",
			MaxWidth:  cfg.MaxImageWidth,
			Logger:    logger,
		}, nil
	case config.BlobCloudinary:
		return blob.NewCloudinaryStore(
			cfg.Cloudinary.CloudName,
			cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret,
			cfg.UploadFolder,
			logger,
		)
	}
	return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
}
