package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/config"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioStore keeps media in any S3-compatible server reachable through minio-go.
type MinioStore struct {
	client    minioAPI
	bucket    string
	publicURL string
	prefix    string
}

// NewMinioStore connects and creates the bucket with a public read policy when it is missing.
func NewMinioStore(ctx context.Context, cfg config.MinioConfig, prefix string) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Endpoint
	}

	return newMinioStore(client, cfg.Bucket, publicURL, prefix), nil
}

func newMinioStore(client minioAPI, bucket, publicURL, prefix string) *MinioStore {
	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		prefix:    prefix,
	}
}

func (s *MinioStore) Upload(ctx context.Context, obj Object) (*UploadResult, error) {
	if obj.Body == nil {
		return nil, &UploadError{Filename: obj.Filename, Err: errors.New("empty body")}
	}

	name := storedName(obj.Filename)
	key := objectKey(s.prefix, name)

	info, err := s.client.PutObject(ctx, s.bucket, key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: contentTypeOrDefault(obj.ContentType),
	})
	if err != nil {
		return nil, &UploadError{Filename: obj.Filename, Err: err}
	}
	if info.ETag == "" {
		return nil, &UploadError{Filename: obj.Filename, Err: ErrNoRemoteID}
	}

	return &UploadResult{
		RemoteID:   info.ETag,
		URL:        fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key),
		StoredName: name,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(s.prefix, name), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove minio object %s: %w", name, err)
	}
	return nil
}

func publicReadPolicy(bucket string) string {
	return `{
	"Version": "2012-10-17",
	"Statement": [
		{
			"Action": ["s3:GetObject"],
			"Effect": "Allow",
			"Principal": "*",
			"Resource": "arn:aws:s3:::` + bucket + `/*"
		}
	]
}`
}
