package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/storage"
	"github.com/ArthurDelaporte/MediaFeed-Back/internal/user"
)

const defaultStorageTimeout = 30 * time.Second

// Service owns the post lifecycle. Database work runs in short transactions;
// media store calls never hold a connection.
type Service struct {
	db             *gorm.DB
	store          storage.MediaStore
	now            func() time.Time
	tempDir        string
	storageTimeout time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTempDir sets where uploads are spooled before they reach the store.
func WithTempDir(dir string) Option {
	return func(s *Service) { s.tempDir = dir }
}

func WithStorageTimeout(d time.Duration) Option {
	return func(s *Service) { s.storageTimeout = d }
}

func NewService(db *gorm.DB, store storage.MediaStore, opts ...Option) *Service {
	s := &Service{
		db:             db,
		store:          store,
		now:            time.Now,
		storageTimeout: defaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreatePostInput struct {
	UploaderID string
	// UploaderEmail creates the uploader's user row when only the identity provider knows it.
	UploaderEmail string
	Caption       string
	Content       io.Reader
	ContentType   string
	Filename      string
}

// CreatePost uploads the media then inserts the post. Nothing is persisted when the upload fails,
// and the stored object is removed again when the insert fails.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	if strings.TrimSpace(in.Caption) == "" {
		return nil, fmt.Errorf("%w: caption is required", ErrInvalidPost)
	}
	if utf8.RuneCountInString(in.Caption) > MaxCaptionLength {
		return nil, fmt.Errorf("%w: caption exceeds %d characters", ErrInvalidPost, MaxCaptionLength)
	}
	if in.Content == nil {
		return nil, fmt.Errorf("%w: media is required", ErrInvalidPost)
	}

	fileType := ClassifyFileType(in.ContentType)

	buf, err := storage.Spool(in.Content, s.tempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := buf.Release(); err != nil {
			logs.LogJSON("WARN", "Temporary upload not released", map[string]interface{}{
				"error": err.Error(),
				"file":  buf.Name(),
			})
		}
	}()

	if _, err := user.NewRepository(s.db).Ensure(ctx, in.UploaderID, in.UploaderEmail); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnknownUploader
		}
		return nil, err
	}

	uploaded, err := s.upload(ctx, buf, in)
	if err != nil {
		return nil, err
	}

	created := Post{
		ID:        uuid.NewString(),
		UserID:    in.UploaderID,
		Caption:   in.Caption,
		URL:       uploaded.URL,
		FileType:  fileType,
		FileName:  uploaded.StoredName,
		CreatedAt: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return NewRepository(tx).Create(ctx, &created)
	})
	if err != nil {
		s.discardObject(ctx, uploaded.StoredName, err)
		return nil, err
	}

	view := created.View()
	return &view, nil
}

func (s *Service) upload(ctx context.Context, buf *storage.Buffer, in CreatePostInput) (*storage.UploadResult, error) {
	if err := buf.Rewind(); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	if s.storageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storageTimeout)
		defer cancel()
	}

	res, err := s.store.Upload(ctx, storage.Object{
		Body:        buf,
		Size:        buf.Size(),
		Filename:    in.Filename,
		ContentType: in.ContentType,
	})
	if err != nil {
		if !storage.IsUploadError(err) {
			err = &storage.UploadError{Filename: in.Filename, Err: err}
		}
		return nil, fmt.Errorf("upload media: %w", err)
	}
	if res == nil || res.RemoteID == "" {
		return nil, fmt.Errorf("upload media: %w", &storage.UploadError{Filename: in.Filename, Err: storage.ErrNoRemoteID})
	}
	return res, nil
}

// ListFeed returns every post newest first, annotated for viewerID.
func (s *Service) ListFeed(ctx context.Context, viewerID string) ([]PostFeedItem, error) {
	var (
		posts   []Post
		authors map[string]user.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if posts, err = NewRepository(tx).ListNewestFirst(ctx); err != nil {
			return err
		}
		authors, err = resolveAuthors(ctx, user.NewRepository(tx), posts)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]PostFeedItem, 0, len(posts))
	for i := range posts {
		items = append(items, annotate(&posts[i], viewerID, authors))
	}
	return items, nil
}

func (s *Service) GetPost(ctx context.Context, viewerID, postID string) (*PostFeedItem, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrNotFound
	}

	var (
		p       *Post
		authors map[string]user.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = NewRepository(tx).FindByID(ctx, postID); err != nil {
			return err
		}
		authors, err = resolveAuthors(ctx, user.NewRepository(tx), []Post{*p})
		return err
	})
	if err != nil {
		return nil, err
	}

	item := annotate(p, viewerID, authors)
	return &item, nil
}

// DeletePost removes requesterID's post, then its stored media. A failed media removal
// is logged; the object is then retained in the store.
func (s *Service) DeletePost(ctx context.Context, requesterID, postID string) error {
	if _, err := uuid.Parse(postID); err != nil {
		return ErrNotFound
	}

	var removed *Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		p, err := repo.FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.UserID != requesterID {
			return ErrForbidden
		}
		if err := repo.Delete(ctx, p.ID); err != nil {
			return err
		}
		removed = p
		return nil
	})
	if err != nil {
		return err
	}

	s.discardObject(ctx, removed.FileName, nil)
	return nil
}

func (s *Service) discardObject(ctx context.Context, storedName string, cause error) {
	timeout := s.storageTimeout
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.store.Delete(ctx, storedName); err != nil {
		fields := map[string]interface{}{
			"error":     err.Error(),
			"file_name": storedName,
		}
		if cause != nil {
			fields["cause"] = cause.Error()
		}
		logs.LogJSON("ERROR", "Stored media not removed", fields)
	}
}

func resolveAuthors(ctx context.Context, users *user.Repository, posts []Post) (map[string]user.User, error) {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}

	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]user.User, len(found))
	for _, u := range found {
		authors[u.ID] = u
	}
	return authors, nil
}

func annotate(p *Post, viewerID string, authors map[string]user.User) PostFeedItem {
	item := PostFeedItem{
		PostView: p.View(),
		UserID:   p.UserID,
		IsOwner:  p.UserID == viewerID,
	}
	if author, ok := authors[p.UserID]; ok {
		email := author.Email
		item.Email = &email
	}
	return item
}
