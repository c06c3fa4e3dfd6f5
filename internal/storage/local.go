package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local persists uploaded originals under one flat directory. Each file gets
// a generated unique name that keeps the original extension, and is served
// back at URLPrefix/<name>.
type Local struct {
	dir       string
	urlPrefix string
}

type StoredFile struct {
	Filename string
	URL      string
	Size     int64
}

const URLPrefix = "/uploads"

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{dir: dir, urlPrefix: URLPrefix}, nil
}

// Dir returns the directory originals are written to, for static serving.
func (l *Local) Dir() string {
	return l.dir
}

// Save streams the content to disk; the original is never buffered whole.
func (l *Local) Save(originalName string, r io.Reader) (StoredFile, error) {
	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(l.dir, name)

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create %s: %w", name, err)
	}
	size, err := io.Copy(dst, r)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return StoredFile{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return StoredFile{
		Filename: name,
		URL:      l.urlPrefix + "/" + name,
		Size:     size,
	}, nil
}

// Remove deletes a stored file, used to roll back a half-written batch.
func (l *Local) Remove(filename string) error {
	return os.Remove(filepath.Join(l.dir, filename))
}
