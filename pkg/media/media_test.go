package media

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func TestDecodeDataURI(t *testing.T) {
	enc := base64.StdEncoding.EncodeToString(pngBytes)

	b, err := DecodeDataURI("data:image/png;base64," + enc)
	require.NoError(t, err)
	require.Equal(t, pngBytes, b)

	b, err = DecodeDataURI(enc)
	require.NoError(t, err)
	require.Equal(t, pngBytes, b)
}

func TestDecodeDataURIErrors(t *testing.T) {
	_, err := DecodeDataURI("  ")
	require.ErrorIs(t, err, ErrEmptyImage)

	_, err = DecodeDataURI("data:image/png,rawtext")
	require.ErrorIs(t, err, ErrInvalidDataURI)

	_, err = DecodeDataURI("data:image/png;base64,%%%")
	require.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestDetectAllowsOnlyImageFormats(t *testing.T) {
	ct, err := Detect(pngBytes, ImageFormats)
	require.NoError(t, err)
	require.Equal(t, "image/png", ct)

	ct, err = Detect(jpegBytes, ImageFormats)
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", ct)

	_, err = Detect(gifBytes, ImageFormats)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Detect([]byte("just some text"), ImageFormats)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Detect(nil, ImageFormats)
	require.ErrorIs(t, err, ErrEmptyImage)
}

func TestPublicURLs(t *testing.T) {
	require.Equal(t, "https://storage.googleapis.com/b/product_images/Shoe", GCSPublicURL("b", "product_images/Shoe"))

	opts := S3Options{Bucket: "media", Region: "eu-west-1"}
	require.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/k", S3PublicURL(opts, "k"))

	opts.Endpoint = "http://minio:9000/"
	require.Equal(t, "http://minio:9000/media/k", S3PublicURL(opts, "k"))

	opts.PublicURL = "https://cdn.test/"
	require.Equal(t, "https://cdn.test/k", S3PublicURL(opts, "k"))
}

func TestVersionedURLChangesPerUpload(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := versioned("https://x/k", t0)
	b := versioned("https://x/k", t0.Add(time.Nanosecond))
	require.NotEqual(t, a, b)
	require.Contains(t, a, "https://x/k?v=")
}
