package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is how stored blobs are referenced from database rows and served
// over HTTP.
const URLPrefix = "/uploads"

// Store is the blob store used for endorsement, certificate and acta files.
type Store interface {
	// Save writes the content under dir with a collision-resistant name and
	// returns the "/uploads/..." reference path.
	Save(ctx context.Context, dir, originalName string, content io.Reader) (string, error)
	// Remove deletes the blob referenced by a "/uploads/..." path. Removing
	// a missing blob is not an error.
	Remove(ctx context.Context, refPath string) error
}

type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Save(ctx context.Context, dir, originalName string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))

	fullDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll -> %w", err)
	}

	f, err := os.Create(filepath.Join(fullDir, name))
	if err != nil {
		return "", fmt.Errorf("os.Create -> %w", err)
	}
	defer f.Close()

	if _, err = io.Copy(f, content); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("io.Copy -> %w", err)
	}

	return path.Join(URLPrefix, dir, name), nil
}

func (s *DiskStore) Remove(ctx context.Context, refPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel := strings.TrimPrefix(refPath, URLPrefix)
	rel = strings.TrimPrefix(rel, "/")

	// Refuse anything that would escape the uploads root.
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("invalid blob path %q", refPath)
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

// Root returns the directory blobs live under, for static file serving.
func (s *DiskStore) Root() string {
	return s.root
}
