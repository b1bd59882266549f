package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects on the local filesystem under root/<bucket>/<key>.
// The HTTP server exposes root under baseURL + "/media".
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a filesystem-backed store.
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Root returns the directory served under /media.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(bucket, key string) (string, error) {
	if _, ok := AllowedMIMETypes[bucket]; !ok {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, bucket, key), nil
}

// Upload writes r to a new file. Existing objects are never overwritten.
func (s *LocalStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := checkContentType(bucket, contentType); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create object %s/%s: %w", bucket, key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return fmt.Errorf("failed to write object %s/%s: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return fmt.Errorf("failed to close object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns the URL the object is served under.
func (s *LocalStore) PublicURL(bucket, key string) string {
	return s.baseURL + "/media/" + bucket + "/" + url.PathEscape(key)
}

// EnsureBucket creates the bucket directory.
func (s *LocalStore) EnsureBucket(ctx context.Context, bucket string) error {
	if _, ok := AllowedMIMETypes[bucket]; !ok {
		return fmt.Errorf("unknown bucket %q", bucket)
	}
	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
		return fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return nil
}
