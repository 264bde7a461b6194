package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds object storage connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// PublicBaseURL is the externally reachable prefix for stored objects,
	// e.g. a CDN origin. Defaults to the endpoint itself.
	PublicBaseURL string
}

// MinioStore persists assets in any S3-compatible object store.
type MinioStore struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinio constructs an object-store-backed asset store and ensures the
// bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	if cfg.PublicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicBaseURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &MinioStore{client: client, cfg: cfg}, nil
}

func (s *MinioStore) Put(ctx context.Context, storageID string, data []byte, contentType string) (Object, error) {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, storageID,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return Object{}, fmt.Errorf("put object %s: %w", storageID, err)
	}
	url := fmt.Sprintf("%s/%s/%s", s.cfg.PublicBaseURL, s.cfg.Bucket, storageID)
	return Object{
		URL: url,
		// Thumbnail rendering is handled by the image CDN in front of the
		// bucket; the query parameter selects the downscaled variant.
		ThumbnailURL: url + "?size=thumb",
		StorageID:    storageID,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, storageID string) error {
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, storageID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", storageID, err)
	}
	return nil
}
