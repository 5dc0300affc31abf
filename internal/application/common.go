package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/pkg/apperror"
	"github.com/oksasatya/inventory-sales-api/pkg/helpers"
	"github.com/oksasatya/inventory-sales-api/pkg/media"
)

const minPasswordLength = 6

// Outbound bounds calls to the media store and the mail provider.
type Outbound struct {
	Timeout time.Duration
	Retries uint64
}

// Do runs fn with the retry policy.
func (o Outbound) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return helpers.Retry(ctx, o.Retries, o.Timeout, fn)
}

func loggerOrNop(l *logrus.Logger) *logrus.Logger {
	if l == nil {
		return helpers.NopLogger()
	}
	return l
}

// parseID turns a path id into an ObjectID. Malformed ids cannot exist, so
// they are reported the same way as missing ones.
func parseID(id, what string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return bson.NilObjectID, apperror.NotFound(what + " not found")
	}
	return oid, nil
}

// missing returns a details map for the empty fields, or nil when all are set.
func missing(fields map[string]string) map[string]string {
	out := map[string]string{}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			out[name] = "is required"
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// uploadImage decodes a data URI and stores it under key with retries.
func uploadImage(ctx context.Context, store media.Store, policy Outbound, image, key string) (string, error) {
	if store == nil {
		return "", apperror.Internal("image storage unavailable", errors.New("media store not configured"))
	}
	data, err := media.DecodeDataURI(image)
	if err != nil {
		return "", apperror.Validation("invalid image", map[string]string{"photo": err.Error()})
	}
	if _, err := media.Detect(data, media.ImageFormats); err != nil {
		return "", apperror.Validation("unsupported image format", map[string]string{"photo": "allowed formats: jpg, jpeg, png"})
	}
	var url string
	err = policy.Do(ctx, func(ctx context.Context) error {
		u, err := store.Upload(ctx, data, key, media.ImageFormats)
		if err != nil {
			return err
		}
		url = u
		return nil
	})
	if err != nil {
		return "", apperror.Internal("image upload failed", err)
	}
	return url, nil
}
