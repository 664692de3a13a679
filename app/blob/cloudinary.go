package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads images to a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	logger *slog.Logger
}

// NewCloudinaryStore builds a store from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string, logger *slog.Logger) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, errors.New("cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudinaryStore{cld: cld, folder: folder, logger: logger}, nil
}

// publicID mirrors "<unix millis>-<random up to 1e9>".
func publicID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(rand.Intn(1e9))
}

func (s *CloudinaryStore) Upload(ctx context.Context, obj Object) (string, error) {
	if _, err := Detect(obj.Data); err != nil {
		return "", err
	}

	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID(time.Now()),
		AllowedFormats: api.CldAPIArray(AllowedFormats),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	s.logger.Debug("image stored",
		"event", "blob_uploaded",
		"driver", "cloudinary",
		"original_name", obj.Filename,
		"public_id", resp.PublicID,
	)
	return resp.SecureURL, nil
}
