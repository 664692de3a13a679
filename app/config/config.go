package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBadger   = "badger"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	BlobLocal      = "local"
	BlobCloudinary = "cloudinary"
)

// Config is the process configuration. It is built once at startup and
// passed by value into the components that need it.
type Config struct {
	Port       string
	CORSOrigin string

	StoreDriver   string
	DataDir       string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	StoreTimeout  time.Duration

	JWTSecret string

	BlobDriver     string
	UploadsDir     string
	UploadFolder   string
	PublicBaseURL  string
	MaxUploadBytes int64
	MaxImageWidth  int
	Cloudinary     Cloudinary

	LogLevel  string
	LogFormat string
}

// Cloudinary holds the media host credentials.
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	timeout, err := envDuration("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	maxUpload, err := envInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return Config{}, err
	}
	maxWidth, err := envInt("MAX_IMAGE_WIDTH", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:       os.Getenv("PORT"),
		CORSOrigin: os.Getenv("CORS_ORIGIN"),

		StoreDriver:   strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		DataDir:       os.Getenv("DATA_DIR"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: os.Getenv("MONGO_DATABASE"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		StoreTimeout:  timeout,

		JWTSecret: os.Getenv("JWT_SECRET"),

		BlobDriver:     strings.ToLower(strings.TrimSpace(os.Getenv("BLOB_DRIVER"))),
		UploadsDir:     os.Getenv("UPLOADS_DIR"),
		UploadFolder:   os.Getenv("UPLOAD_FOLDER"),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		MaxUploadBytes: int64(maxUpload),
		MaxImageWidth:  maxWidth,
		Cloudinary: Cloudinary{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: os.Getenv("LOG_FORMAT"),
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Port == "" {
		c.Port = "5001"
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = "*"
	}
	if c.DataDir == "" {
		c.DataDir = "data/badger"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "postboard"
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 10 * time.Second
	}
	if c.BlobDriver == "" {
		c.BlobDriver = BlobLocal
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.UploadFolder == "" {
		c.UploadFolder = "uploads"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Store returns the selected store driver. A Mongo URI without an explicit
// driver selects Mongo.
func (c Config) Store() string {
	if c.StoreDriver != "" {
		return c.StoreDriver
	}
	if c.MongoURI != "" {
		return StoreMongo
	}
	return StoreBadger
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// BaseURL is the public origin used to build local upload URLs.
func (c Config) BaseURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return "http://localhost:" + strings.TrimPrefix(c.Port, ":")
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate reports configuration that would prevent serving.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":")); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}

	switch c.Store() {
	case StoreBadger:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the badger store"))
		}
	case StoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo store"))
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}

	switch c.BlobDriver {
	case BlobLocal:
	case BlobCloudinary:
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary blob store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob driver %q", c.BlobDriver))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func envInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return value, nil
}
