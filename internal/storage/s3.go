package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/config"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps media in an S3 bucket. The object ETag is the remote identifier.
type S3Store struct {
	client   s3API
	bucket   string
	region   string
	endpoint string
	prefix   string
}

func NewS3Store(ctx context.Context, cfg config.S3Config, prefix string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg, prefix), nil
}

func newS3Store(client s3API, cfg config.S3Config, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		prefix:   prefix,
	}
}

func (s *S3Store) Upload(ctx context.Context, obj Object) (*UploadResult, error) {
	if obj.Body == nil {
		return nil, &UploadError{Filename: obj.Filename, Err: errors.New("empty body")}
	}

	name := storedName(obj.Filename)
	key := objectKey(s.prefix, name)

	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(contentTypeOrDefault(obj.ContentType)),
	})
	if err != nil {
		return nil, &UploadError{Filename: obj.Filename, Err: err}
	}

	remoteID := strings.Trim(aws.ToString(out.ETag), `"`)
	if remoteID == "" {
		return nil, &UploadError{Filename: obj.Filename, Err: ErrNoRemoteID}
	}

	return &UploadResult{
		RemoteID:   remoteID,
		URL:        s.publicURL(key),
		StoredName: name,
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(s.prefix, name)),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
