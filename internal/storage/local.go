package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLocalDir is where LocalStore writes when no directory is configured.
const DefaultLocalDir = "/tmp/acervo/assets"

// LocalStore writes assets to the filesystem as <dir>/<bucket>/<key>.
// The HTTP server exposes the directory under /media.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a filesystem-backed asset store.
func NewLocalStore(dir, baseURL string) *LocalStore {
	if dir == "" {
		dir = DefaultLocalDir
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	return &LocalStore{dir: dir, baseURL: baseURL}
}

// Dir returns the root directory of the store.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Upload writes body to disk. Existing keys are not overwritten.
func (s *LocalStore) Upload(_ context.Context, bucket, key string, body []byte, _ string) error {
	path, err := s.pathFor(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("asset %s/%s already exists", bucket, key)
		}
		return err
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// PublicURL returns the URL under which the server serves the asset.
func (s *LocalStore) PublicURL(bucket, key string) string {
	return joinURL(s.baseURL, bucket, key)
}

func (s *LocalStore) pathFor(bucket, key string) (string, error) {
	if !validSegment(bucket) || !validSegment(key) {
		return "", fmt.Errorf("invalid asset location %q/%q", bucket, key)
	}
	return filepath.Join(s.dir, bucket, key), nil
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
