package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gasmap/internal/codec"
	"gasmap/internal/domain"
)

// Store saves and loads documents by location.
type Store interface {
	Save(ctx context.Context, location string, doc *domain.Document) error
	Load(ctx context.Context, location string) (*domain.Document, error)
}

// ErrOutsideStore is returned for a location that resolves outside the
// store directory.
var ErrOutsideStore = errors.New("location is outside the storage directory")

// FileStore keeps documents as files. The codec is chosen by extension.
// With a Dir set, every location must resolve to a file under Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates a file store rooted at dir. An empty dir means the
// working directory with no confinement, for trusted command-line paths.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path resolves a location to a file path under Dir.
func (s *FileStore) Path(location string) (string, error) {
	if s.Dir == "" {
		return location, nil
	}
	if location == "" {
		return "", fmt.Errorf("%w: empty location", ErrOutsideStore)
	}

	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", &domain.IOError{Op: "resolve", Location: s.Dir, Err: err}
	}
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideStore, location)
	}
	return path, nil
}

// Save encodes doc and replaces the file atomically.
func (s *FileStore) Save(ctx context.Context, location string, doc *domain.Document) error {
	path, err := s.Path(location)
	if err != nil {
		return err
	}
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.Export(doc, &buf); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gasmap-*")
	if err != nil {
		return &domain.IOError{Op: "write", Location: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return &domain.IOError{Op: "write", Location: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &domain.IOError{Op: "write", Location: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &domain.IOError{Op: "write", Location: path, Err: err}
	}
	return nil
}

// Load reads and decodes a document.
func (s *FileStore) Load(ctx context.Context, location string) (*domain.Document, error) {
	path, err := s.Path(location)
	if err != nil {
		return nil, err
	}
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Location: path, Err: err}
	}
	defer f.Close()

	doc, err := c.Parse(f)
	if err != nil {
		if errors.Is(err, domain.ErrFileFormat) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, &domain.IOError{Op: "read", Location: path, Err: err}
	}
	return doc, nil
}
