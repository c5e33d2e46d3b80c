// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/storage"
)

// NewDB opens a file-backed SQLite database private to t and migrates models into it.
func NewDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// MemoryStore is a MediaStore keeping objects in memory.
type MemoryStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Uploads   int
	Deleted   []string
	UploadErr error
	DeleteErr error
	// EmptyRemoteID makes Upload answer without an identifier.
	EmptyRemoteID bool
	next          int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, obj storage.Object) (*storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Uploads++
	if s.UploadErr != nil {
		return nil, &storage.UploadError{Filename: obj.Filename, Err: s.UploadErr}
	}

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, &storage.UploadError{Filename: obj.Filename, Err: err}
	}

	s.next++
	name := fmt.Sprintf("obj-%d%s", s.next, filepath.Ext(obj.Filename))
	s.Objects[name] = data

	remoteID := fmt.Sprintf("remote-%d", s.next)
	if s.EmptyRemoteID {
		remoteID = ""
	}
	return &storage.UploadResult{
		RemoteID:   remoteID,
		URL:        "https://cdn.test/" + name,
		StoredName: name,
	}, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Deleted = append(s.Deleted, name)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.Objects[name]; !ok {
		return errors.New("no such object")
	}
	delete(s.Objects, name)
	return nil
}

func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}
