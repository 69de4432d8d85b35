package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
)

var ErrValidation = errors.New("validation error")

const signedURLTTL = 5 * time.Minute

// PhotoStore hands out short-lived read links for photo object keys.
// The database stores keys, never URLs; anything a client renders goes
// through PresignGet.
type PhotoStore struct {
	client *minio.Client
	bucket string

	checkOnce sync.Once
	checkErr  error
}

func NewPhotoStore(client *minio.Client, bucket string) *PhotoStore {
	return &PhotoStore{client: client, bucket: strings.TrimSpace(bucket)}
}

// EnsureBucket verifies the bucket exists, creating it when pointed at
// a fresh object store. The check runs once per process.
func (p *PhotoStore) EnsureBucket(ctx context.Context) error {
	if p.client == nil || p.bucket == "" {
		return fmt.Errorf("photo store is not configured")
	}

	p.checkOnce.Do(func() {
		ok, err := p.client.BucketExists(ctx, p.bucket)
		switch {
		case err != nil:
			p.checkErr = err
		case !ok:
			p.checkErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
		}
	})
	if p.checkErr != nil {
		return fmt.Errorf("ensure bucket %q: %w", p.bucket, p.checkErr)
	}

	return nil
}

// PresignGet returns a GET URL for the key, valid for ttl. A default
// TTL is applied when ttl is not positive.
func (p *PhotoStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrValidation
	}
	if ttl <= 0 {
		ttl = signedURLTTL
	}

	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}

	return u.String(), nil
}
