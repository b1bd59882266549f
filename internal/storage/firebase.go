package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	fbstorage "firebase.google.com/go/v4/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// FirebaseStore stores objects in Cloud Storage buckets reached through the
// Firebase Admin SDK.
type FirebaseStore struct {
	fb        *fbstorage.Client
	admin     *gcs.Client
	projectID string
	buckets   map[string]string
	logger    *zap.SugaredLogger
}

// NewFirebaseStore creates a store. buckets maps logical names to physical bucket names.
func NewFirebaseStore(fb *fbstorage.Client, admin *gcs.Client, projectID string, buckets map[string]string, logger *zap.SugaredLogger) *FirebaseStore {
	return &FirebaseStore{
		fb:        fb,
		admin:     admin,
		projectID: projectID,
		buckets:   buckets,
		logger:    logger,
	}
}

func (s *FirebaseStore) physical(bucket string) (string, error) {
	name, ok := s.buckets[bucket]
	if !ok || name == "" {
		return "", fmt.Errorf("unknown bucket %q", bucket)
	}
	return name, nil
}

func (s *FirebaseStore) handle(bucket string) (*gcs.BucketHandle, error) {
	name, err := s.physical(bucket)
	if err != nil {
		return nil, err
	}
	h, err := s.fb.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", name, err)
	}
	return h, nil
}

// Upload writes r to bucket/key without overwriting existing objects.
func (s *FirebaseStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	if err := checkContentType(bucket, contentType); err != nil {
		return err
	}
	h, err := s.handle(bucket)
	if err != nil {
		return err
	}

	w := h.Object(key).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL returns the public download URL of an object.
func (s *FirebaseStore) PublicURL(bucket, key string) string {
	name, err := s.physical(bucket)
	if err != nil {
		name = bucket
	}
	return publicObjectURL(name, key)
}

func publicObjectURL(bucket, key string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + url.PathEscape(key)
}

// EnsureBucket creates the bucket when missing, makes new objects publicly
// readable and records the MIME allow-list as bucket labels.
func (s *FirebaseStore) EnsureBucket(ctx context.Context, bucket string) error {
	name, err := s.physical(bucket)
	if err != nil {
		return err
	}

	exists, err := s.bucketExists(ctx, name)
	if err != nil {
		return err
	}

	h := s.admin.Bucket(name)
	labels := mimeLabels(bucket)
	if !exists {
		attrs := &gcs.BucketAttrs{
			Labels: labels,
			UniformBucketLevelAccess: gcs.UniformBucketLevelAccess{
				Enabled: false,
			},
		}
		if err := h.Create(ctx, s.projectID, attrs); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		s.logger.Infow("Created bucket", "bucket", name)
	} else {
		update := gcs.BucketAttrsToUpdate{}
		for k, v := range labels {
			update.SetLabel(k, v)
		}
		if _, err := h.Update(ctx, update); err != nil {
			return fmt.Errorf("failed to label bucket %s: %w", name, err)
		}
	}

	if err := h.DefaultObjectACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return fmt.Errorf("failed to make bucket %s public: %w", name, err)
	}
	return nil
}

func (s *FirebaseStore) bucketExists(ctx context.Context, name string) (bool, error) {
	it := s.admin.Buckets(ctx, s.projectID)
	it.Prefix = name
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to list buckets: %w", err)
		}
		if attrs.Name == name {
			return true, nil
		}
	}
}
