package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configures an S3 compatible store (AWS, MinIO, R2...).
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // optional custom endpoint
	AccessKey string
	SecretKey string
	PublicURL string // optional base URL objects are served from
}

// S3Store keeps objects in a single S3 bucket.
type S3Store struct {
	Client *s3.Client
	opts   S3Options
	now    func() time.Time
}

func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Store{Client: client, opts: opts, now: time.Now}, nil
}

func (s *S3Store) Upload(ctx context.Context, data []byte, key string, allowedFormats []string) (string, error) {
	contentType, err := Detect(data, allowedFormats)
	if err != nil {
		return "", err
	}
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.opts.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", err
	}
	return versioned(s.ObjectURL(key), s.now()), nil
}

func (s *S3Store) Destroy(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	return err
}

// ObjectURL returns the unversioned public URL of key.
func (s *S3Store) ObjectURL(key string) string {
	return S3PublicURL(s.opts, key)
}

func S3PublicURL(opts S3Options, key string) string {
	switch {
	case opts.PublicURL != "":
		return strings.TrimRight(opts.PublicURL, "/") + "/" + key
	case opts.Endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(opts.Endpoint, "/"), opts.Bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", opts.Bucket, opts.Region, key)
	}
}
