// Package storage uploads post media to an external object store and hands back
// the public URL the feed serves.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/config"
)

// ErrNoRemoteID is set on an UploadError when the store answered without an object identifier.
var ErrNoRemoteID = errors.New("store returned no remote identifier")

// MediaStore is the external media service. Upload must only succeed with a non-empty RemoteID.
type MediaStore interface {
	Upload(ctx context.Context, obj Object) (*UploadResult, error)
	Delete(ctx context.Context, storedName string) error
}

// Object is a buffered upload. Body is seekable so the store can retry or sign it.
type Object struct {
	Body        io.ReadSeeker
	Size        int64
	Filename    string
	ContentType string
}

type UploadResult struct {
	RemoteID   string
	URL        string
	StoredName string
}

type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %q: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// IsUploadError reports whether err carries an UploadError.
func IsUploadError(err error) bool {
	var uploadErr *UploadError
	return errors.As(err, &uploadErr)
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (MediaStore, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return NewS3Store(ctx, cfg.S3, cfg.Prefix)
	case config.StorageDriverMinio:
		return NewMinioStore(ctx, cfg.Minio, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// storedName is the name the store assigns: a fresh uuid keeping the lowercased extension.
func storedName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return uuid.NewString() + ext
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
