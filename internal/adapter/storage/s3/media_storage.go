package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/estate-manager/property-service/internal/platform/logger"
	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStorage stores listing images in a MinIO/S3 bucket. The object key
// doubles as the media identifier used for deletion and URL derivation.
type MediaStorage struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

func NewMediaStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool, log logger.Logger) (*MediaStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: %w", bucket, err)
		}
	}

	log.Info("media storage initialized", "endpoint", endpoint, "bucket", bucket, "use_ssl", useSSL)
	return &MediaStorage{client: client, bucket: bucket, logger: log}, nil
}

// Upload stores the image under a key derived from the property id and the
// upload instant, mirroring how the listing photos are named everywhere
// else in the system.
func (s *MediaStorage) Upload(ctx context.Context, propertyID, fileName string, data []byte) (*domain.MediaObject, error) {
	ext := filepath.Ext(fileName)
	objectKey := fmt.Sprintf("properties/property-%s-%d%s", propertyID, time.Now().UnixNano(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}

	s.logger.Info("uploaded property image", "bucket", s.bucket, "key", objectKey, "size_bytes", len(data))
	return &domain.MediaObject{
		PublicID: objectKey,
		URL:      s.objectURL(objectKey),
	}, nil
}

func (s *MediaStorage) Delete(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", publicID, s.bucket, err)
	}
	s.logger.Info("deleted property image", "bucket", s.bucket, "key", publicID)
	return nil
}

// Variants derives the fixed display sizes from a media identifier. The
// resize parameters ride on the query string for the image proxy in front
// of the bucket.
func (s *MediaStorage) Variants(publicID string) domain.MediaVariants {
	return domain.MediaVariants{
		Thumbnail: s.variantURL(publicID, 300, 200),
		Medium:    s.variantURL(publicID, 600, 400),
		Large:     s.variantURL(publicID, 1200, 800),
		Original:  s.objectURL(publicID),
	}
}

func (s *MediaStorage) objectURL(objectKey string) string {
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
}

func (s *MediaStorage) variantURL(objectKey string, width, height int) string {
	params := url.Values{}
	params.Set("width", fmt.Sprintf("%d", width))
	params.Set("height", fmt.Sprintf("%d", height))
	params.Set("fit", "crop")
	return s.objectURL(objectKey) + "?" + params.Encode()
}
