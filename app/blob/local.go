package blob

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	_ "image/gif"

	"golang.org/x/crypto/sha3"
	"golang.org/x/image/draw"
)

const jpegQuality = 85

// LocalStore writes images below Dir/Folder and serves them from
// BaseURL + URLPrefix. Object names are content hashes, so re-uploading the
// same bytes yields the same URI.
type LocalStore struct {
	Dir       string
	Folder    string
	BaseURL   string
	URLPrefix string
	// MaxWidth downscales wider jpg/png images. Zero keeps originals.
	MaxWidth int
	Logger   *slog.Logger
}

func (s *LocalStore) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *LocalStore) Upload(ctx context.Context, obj Object) (string, error) {
	format, err := Detect(obj.Data)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := obj.Data
	if s.MaxWidth > 0 && format != FormatGIF {
		data, err = downscale(obj.Data, format, s.MaxWidth)
		if err != nil {
			return "", err
		}
	}

	name := objectName(data, format)
	dir := filepath.Join(s.Dir, s.Folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	uri := strings.TrimRight(s.BaseURL, "/") + path.Join("/", s.URLPrefix, s.Folder, name)
	s.logger().Debug("image stored",
		"event", "blob_uploaded",
		"driver", "local",
		"original_name", obj.Filename,
		"bytes", len(data),
		"uri", uri,
	)
	return uri, nil
}

// objectName is the first 128 bits of the SHA3-256 digest plus extension.
func objectName(data []byte, format Format) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:16]) + "." + string(format)
}

// downscale shrinks images wider than maxWidth, keeping the aspect ratio and
// the original encoding. Narrower images are returned untouched.
func downscale(data []byte, format Format, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if cfg.Width <= maxWidth {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	newH := bounds.Dy() * maxWidth / bounds.Dx()
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
