// Package media stores uploaded images in an object store and hands back
// public URLs. Keys are caller-chosen and stable, so re-uploading under the
// same key replaces the previous object.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyImage        = errors.New("empty image")
	ErrInvalidDataURI    = errors.New("invalid data uri")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ImageFormats are the formats accepted for product and profile images.
var ImageFormats = []string{"jpg", "jpeg", "png"}

// Store is the object storage collaborator.
type Store interface {
	// Upload writes data under key, replacing any previous object, and
	// returns a URL that changes on every upload.
	Upload(ctx context.Context, data []byte, key string, allowedFormats []string) (string, error)
	// Destroy removes the object. Missing objects are not an error.
	Destroy(ctx context.Context, key string) error
}

// DecodeDataURI accepts "data:<mime>;base64,<payload>" or a bare base64 payload.
func DecodeDataURI(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyImage
	}
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, ok := strings.Cut(s[len("data:"):], ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, ErrInvalidDataURI
		}
		payload = rest
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	if len(b) == 0 {
		return nil, ErrEmptyImage
	}
	return b, nil
}

// Detect sniffs the content type of data and checks it against allowed
// extensions (without dots). It returns the MIME type to store the object with.
func Detect(data []byte, allowed []string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	mt := mimetype.Detect(data)
	if len(allowed) == 0 {
		return mt.String(), nil
	}
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		for m := mt; m != nil; m = m.Parent() {
			if strings.TrimPrefix(m.Extension(), ".") == ext || (ext == "jpeg" && m.Is("image/jpeg")) {
				return mt.String(), nil
			}
		}
	}
	return "", ErrUnsupportedFormat
}

// versioned appends a cache-busting version to a public URL.
func versioned(url string, at time.Time) string {
	return url + "?v=" + strconv.FormatInt(at.UnixNano(), 10)
}
