// Package local stores uploaded blobs on the local filesystem under a single
// root directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
	ErrExists      = errors.New("file already exists")
)

// Store is a flat blob directory. Names never contain path separators.
type Store struct {
	root string
}

// New creates root when missing and returns a store rooted there.
func New(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage directory.
func (s *Store) Root() string {
	return s.root
}

// ValidateName rejects empty names, parent references and path separators.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." {
		return ErrInvalidName
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// Resolve returns the absolute path for name.
func (s *Store) Resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// Put writes r to name and returns the bytes written. It never replaces an
// existing blob: a taken name yields ErrExists. Partial files are removed on
// failure.
func (s *Store) Put(ctx context.Context, name string, r io.Reader) (int64, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	written, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		if copyErr != nil {
			return 0, fmt.Errorf("write blob: %w", copyErr)
		}
		return 0, fmt.Errorf("close blob: %w", closeErr)
	}
	// link refuses an existing path
	linkErr := os.Link(tmp.Name(), path)
	_ = os.Remove(tmp.Name())
	if errors.Is(linkErr, fs.ErrExist) {
		return 0, ErrExists
	}
	if linkErr != nil {
		return 0, fmt.Errorf("commit blob: %w", linkErr)
	}
	return written, nil
}

// Open returns a reader for name. Missing blobs yield ErrNotFound.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Delete removes name. Deleting a missing blob is not an error.
func (s *Store) Delete(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
