package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSStore keeps objects in a single GCS bucket.
type GCSStore struct {
	Client *storage.Client
	Bucket string
	now    func() time.Time
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket, now: time.Now}
}

func (s *GCSStore) Upload(ctx context.Context, data []byte, key string, allowedFormats []string) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	contentType, err := Detect(data, allowedFormats)
	if err != nil {
		return "", err
	}
	wc := s.Client.Bucket(s.Bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "no-cache"
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return versioned(GCSPublicURL(s.Bucket, key), s.now()), nil
}

func (s *GCSStore) Destroy(ctx context.Context, key string) error {
	if s.Client == nil || s.Bucket == "" {
		return errors.New("gcs not configured")
	}
	err := s.Client.Bucket(s.Bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// GCSPublicURL builds a public URL for an object (assuming public read access)
func GCSPublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
