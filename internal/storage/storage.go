// Package storage holds the object stores backing the photos and videos buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Logical bucket names.
const (
	BucketPhotos = "photos"
	BucketVideos = "videos"
)

// ErrContentTypeNotAllowed is returned when an object's content type is not
// on the allow-list of its bucket.
var ErrContentTypeNotAllowed = errors.New("content type not allowed in bucket")

// AllowedMIMETypes lists the content types accepted per logical bucket.
var AllowedMIMETypes = map[string][]string{
	BucketPhotos: {"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
	BucketVideos: {"video/mp4", "video/webm", "video/quicktime"},
}

// ObjectStore uploads media objects and resolves their public URLs.
// Bucket arguments are logical names (photos, videos).
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error
	PublicURL(bucket, key string) string
	EnsureBucket(ctx context.Context, bucket string) error
}

// Buckets returns the logical bucket names in a stable order.
func Buckets() []string {
	out := make([]string, 0, len(AllowedMIMETypes))
	for b := range AllowedMIMETypes {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// IsAllowed reports whether contentType may be stored in bucket.
func IsAllowed(bucket, contentType string) bool {
	for _, t := range AllowedMIMETypes[bucket] {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

func checkContentType(bucket, contentType string) error {
	if !IsAllowed(bucket, contentType) {
		return fmt.Errorf("%s in %s: %w", contentType, bucket, ErrContentTypeNotAllowed)
	}
	return nil
}

// mimeLabels encodes a bucket's MIME allow-list as bucket labels.
// Label keys only allow lowercase letters, digits, '-' and '_'.
func mimeLabels(bucket string) map[string]string {
	labels := map[string]string{"app": "babytracker", "bucket": bucket}
	for _, t := range AllowedMIMETypes[bucket] {
		key := "mime-" + strings.NewReplacer("/", "-", ".", "-", "+", "-").Replace(strings.ToLower(t))
		labels[key] = "allowed"
	}
	return labels
}
