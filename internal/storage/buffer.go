package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Buffer is an upload spooled to a temporary file. Release must be called on every path.
type Buffer struct {
	file *os.File
	size int64
}

// Spool copies r into a temporary file under dir (os.TempDir when empty) and rewinds it.
func Spool(r io.Reader, dir string) (*Buffer, error) {
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	return &Buffer{file: f, size: n}, nil
}

func (b *Buffer) Read(p []byte) (int, error) {
	return b.file.Read(p)
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	return b.file.Seek(offset, whence)
}

func (b *Buffer) Size() int64 {
	return b.size
}

func (b *Buffer) Name() string {
	return b.file.Name()
}

// Rewind moves back to the first byte, before each upload attempt.
func (b *Buffer) Rewind() error {
	_, err := b.file.Seek(0, io.SeekStart)
	return err
}

// Release closes and deletes the temporary file.
func (b *Buffer) Release() error {
	closeErr := b.file.Close()
	removeErr := os.Remove(b.file.Name())
	if errors.Is(removeErr, os.ErrNotExist) {
		removeErr = nil
	}
	return errors.Join(closeErr, removeErr)
}
