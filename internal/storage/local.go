package storage

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

// LocalUploader writes objects below a directory that the HTTP server
// exposes under publicURL.
type LocalUploader struct {
	root      string
	publicURL string
}

// NewLocalUploader creates root if needed.
func NewLocalUploader(root, publicURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: create %s: %w", root, err)
	}
	return &LocalUploader{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the directory objects are written to.
func (u *LocalUploader) Root() string {
	return u.root
}

func (u *LocalUploader) path(key string) (string, string) {
	clean := filepath.Clean("/" + key)
	return clean, filepath.Join(u.root, filepath.FromSlash(clean))
}

func (u *LocalUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	clean, target := u.path(key)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("storage/local: mkdir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("storage/local: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("storage/local: write: %w", err)
	}

	return u.publicURL + filepath.ToSlash(clean), nil
}

func (u *LocalUploader) Delete(_ context.Context, key string) error {
	_, target := u.path(key)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: remove: %w", err)
	}
	return nil
}
