// Package blob uploads post images to a media host and returns the URI the
// image can be fetched from.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedFormat is returned for uploads that are not jpg, png or gif.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrEmpty is returned for zero-length uploads.
var ErrEmpty = errors.New("empty upload")

// Format is a detected image format, named like its canonical extension.
type Format string

const (
	FormatJPEG Format = "jpg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
)

// AllowedFormats lists the extensions accepted by every store.
var AllowedFormats = []string{"jpg", "jpeg", "png", "gif"}

var formatsByMIME = map[string]Format{
	"image/jpeg": FormatJPEG,
	"image/png":  FormatPNG,
	"image/gif":  FormatGIF,
}

// Object is an image waiting to be stored.
type Object struct {
	Filename string
	Data     []byte
}

// Store persists image bytes and returns a retrievable URI.
type Store interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// Detect sniffs the content of data. The client-supplied filename and
// content type are never trusted.
func Detect(data []byte) (Format, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if f, ok := formatsByMIME[m.String()]; ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
}
