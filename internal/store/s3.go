package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tyler180/sleeper-sync/internal/logging"
)

var (
	// ErrUnavailable means no bucket is configured or the client is missing.
	ErrUnavailable = errors.New("durable store unavailable")
	// ErrNotFound means the key does not exist in the bucket.
	ErrNotFound = errors.New("object not found")
)

const contentTypeJSON = "application/json"

// S3API is the slice of the S3 client used here; tests pass a fake.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Bucket is the durable object store. A nil *Bucket is valid and behaves as
// "not configured": every operation returns ErrUnavailable.
type Bucket struct {
	cl   S3API
	name string
	log  *slog.Logger
}

// NewBucket returns nil when either the client or the bucket name is missing.
func NewBucket(cl S3API, name string, log *slog.Logger) *Bucket {
	if cl == nil || name == "" {
		return nil
	}
	return &Bucket{cl: cl, name: name, log: logging.OrDiscard(log)}
}

func (b *Bucket) Enabled() bool { return b != nil }

func (b *Bucket) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// URI renders s3://bucket/key.
func (b *Bucket) URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", b.Name(), key)
}

func (b *Bucket) PutBytes(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if b == nil {
		return "", ErrUnavailable
	}
	_, err := b.cl.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", b.name, key, err)
	}
	return b.URI(key), nil
}

func (b *Bucket) PutJSON(ctx context.Context, key string, v any) (string, error) {
	if b == nil {
		return "", ErrUnavailable
	}
	body, err := EncodeJSON(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", key, err)
	}
	return b.PutBytes(ctx, key, body, contentTypeJSON)
}

// GetJSON decodes the object at key into out.
func (b *Bucket) GetJSON(ctx context.Context, key string, out any) error {
	if b == nil {
		return ErrUnavailable
	}
	res, err := b.cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("get s3://%s/%s: %w", b.name, key, ErrNotFound)
		}
		return fmt.Errorf("get s3://%s/%s: %w", b.name, key, err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read s3://%s/%s: %w", b.name, key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode s3://%s/%s: %w", b.name, key, err)
	}
	return nil
}

// TryPutBytes writes body and returns its URI, or nil after logging a
// warning. A disabled bucket returns nil without logging.
func (b *Bucket) TryPutBytes(ctx context.Context, key string, body []byte, contentType string) *string {
	if b == nil {
		return nil
	}
	uri, err := b.PutBytes(ctx, key, body, contentType)
	if err != nil {
		b.log.Warn("s3 put failed", "bucket", b.name, "key", key, "err", err)
		return nil
	}
	return &uri
}

func (b *Bucket) TryPutJSON(ctx context.Context, key string, v any) *string {
	if b == nil {
		return nil
	}
	body, err := EncodeJSON(v)
	if err != nil {
		b.log.Warn("s3 put skipped: encode failed", "key", key, "err", err)
		return nil
	}
	return b.TryPutBytes(ctx, key, body, contentTypeJSON)
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// EncodeJSON marshals compactly without HTML escaping, so names such as
// "Ja'Marr" or "A&M" are stored verbatim.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
