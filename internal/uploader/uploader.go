// Package uploader stages user-selected media on local disk and commits
// staged files to the object store.
package uploader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/storage"
)

// AcceptedMIMETypes are the content types accepted at selection time.
var AcceptedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// Incoming is a file as selected by the user.
type Incoming struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// StagedFile is an accepted file waiting on local disk for commit.
type StagedFile struct {
	ID          string           `json:"id"`
	Filename    string           `json:"filename"`
	ContentType string           `json:"contentType"`
	Size        int64            `json:"size"`
	Type        domain.MediaType `json:"type"`
	Path        string           `json:"path"`
}

// Ext returns the original extension of the file, lower-cased.
func (f StagedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Filename))
}

// Rejected describes a file refused at selection time.
type Rejected struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// UploadObserver receives the outcome of each object upload.
type UploadObserver interface {
	ObserveUpload(bucket string, size int64, err error)
}

// Uploader stages files and commits them to an ObjectStore.
type Uploader struct {
	store      storage.ObjectStore
	stagingDir string
	maxBytes   int64
	maxFiles   int
	observer   UploadObserver
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// Options configures an Uploader.
type Options struct {
	StagingDir string
	MaxBytes   int64
	MaxFiles   int
	Observer   UploadObserver
}

// New creates an Uploader.
func New(store storage.ObjectStore, opts Options, logger *zap.SugaredLogger) *Uploader {
	return &Uploader{
		store:      store,
		stagingDir: opts.StagingDir,
		maxBytes:   opts.MaxBytes,
		maxFiles:   opts.MaxFiles,
		observer:   opts.Observer,
		logger:     logger,
		now:        time.Now,
	}
}

// Accept checks a selected file against the size limit and the MIME
// allow-list. head holds the first bytes of the content and is used to
// sniff the type when none was declared.
func (u *Uploader) Accept(in Incoming, head []byte) (string, error) {
	if in.Size > u.maxBytes {
		return "", domain.NewValidationError("file", fmt.Sprintf("%s 超过 %dMB", in.Filename, u.maxBytes/(1024*1024)))
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(head).String()
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = contentType[:i]
		}
	}

	if !AcceptedMIMETypes[contentType] {
		return "", domain.NewValidationError("file", fmt.Sprintf("%s 格式不支持", in.Filename))
	}
	return contentType, nil
}

// Stage accepts incoming files into the session's staging directory and
// appends them to existing. The combined list keeps the first MaxFiles
// entries in their original order; files beyond that are discarded.
// Rejected files are reported and skipped.
func (u *Uploader) Stage(ctx context.Context, sessionID string, existing []StagedFile, incoming []Incoming) ([]StagedFile, []Rejected, error) {
	staged := make([]StagedFile, len(existing), len(existing)+len(incoming))
	copy(staged, existing)
	var rejected []Rejected

	for _, in := range incoming {
		if err := ctx.Err(); err != nil {
			return existing, nil, err
		}
		if len(staged) >= u.maxFiles {
			rejected = append(rejected, Rejected{Filename: in.Filename, Reason: fmt.Sprintf("最多 %d 个文件", u.maxFiles)})
			continue
		}

		f, err := u.stageOne(sessionID, in)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				rejected = append(rejected, Rejected{Filename: in.Filename, Reason: ve.Message})
				continue
			}
			return existing, nil, err
		}
		staged = append(staged, f)
	}

	return staged, rejected, nil
}

func (u *Uploader) stageOne(sessionID string, in Incoming) (StagedFile, error) {
	head := make([]byte, 3072)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return StagedFile{}, fmt.Errorf("failed to read %s: %w", in.Filename, err)
	}
	head = head[:n]

	contentType, err := u.Accept(in, head)
	if err != nil {
		return StagedFile{}, err
	}

	dir := u.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StagedFile{}, fmt.Errorf("failed to create staging directory: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(dir, id+strings.ToLower(filepath.Ext(in.Filename)))
	out, err := os.Create(path)
	if err != nil {
		return StagedFile{}, fmt.Errorf("failed to create staged file: %w", err)
	}

	content := io.MultiReader(bytes.NewReader(head), in.Content)
	written, err := io.Copy(out, io.LimitReader(content, u.maxBytes+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return StagedFile{}, fmt.Errorf("failed to write staged file: %w", err)
	}
	// the declared size may lie
	if written > u.maxBytes {
		os.Remove(path)
		return StagedFile{}, domain.NewValidationError("file", fmt.Sprintf("%s 超过 %dMB", in.Filename, u.maxBytes/(1024*1024)))
	}

	return StagedFile{
		ID:          id,
		Filename:    filepath.Base(in.Filename),
		ContentType: contentType,
		Size:        written,
		Type:        domain.ClassifyMIME(contentType),
		Path:        path,
	}, nil
}

// Remove drops the staged file at index and deletes its bytes.
func (u *Uploader) Remove(staged []StagedFile, index int) ([]StagedFile, error) {
	if index < 0 || index >= len(staged) {
		return staged, domain.NewValidationError("index", "no staged file at index "+strconv.Itoa(index))
	}
	if err := os.Remove(staged[index].Path); err != nil && !os.IsNotExist(err) {
		u.logger.Warnw("Failed to delete staged file", "path", staged[index].Path, "error", err)
	}
	out := make([]StagedFile, 0, len(staged)-1)
	out = append(out, staged[:index]...)
	return append(out, staged[index+1:]...), nil
}

// Discard deletes every staged file of the session.
func (u *Uploader) Discard(sessionID string) error {
	if err := os.RemoveAll(u.sessionDir(sessionID)); err != nil {
		return fmt.Errorf("failed to discard staged files: %w", err)
	}
	return nil
}

// Commit uploads staged files one at a time, in order, and returns their
// media pairs index-aligned with staged. The first failure aborts the
// commit with domain.ErrUpload and no media; objects already uploaded in
// the batch stay in storage. staged itself is never modified.
func (u *Uploader) Commit(ctx context.Context, staged []StagedFile) (domain.MediaList, error) {
	media := make(domain.MediaList, 0, len(staged))
	stamp := u.now().UnixMilli()
	var uploaded []string

	for i, f := range staged {
		bucket := f.Type.Bucket()
		key := strconv.FormatInt(stamp, 10) + "-" + strconv.Itoa(i) + f.Ext()

		err := u.uploadOne(ctx, bucket, key, f)
		if u.observer != nil {
			u.observer.ObserveUpload(bucket, f.Size, err)
		}
		if err != nil {
			u.logger.Errorw("Upload failed, aborting commit",
				"index", i,
				"bucket", bucket,
				"key", key,
				"orphaned_objects", uploaded,
				"error", err,
			)
			return nil, fmt.Errorf("%s (%d/%d): %w: %v", f.Filename, i+1, len(staged), domain.ErrUpload, err)
		}

		uploaded = append(uploaded, bucket+"/"+key)
		media = append(media, domain.Media{URL: u.store.PublicURL(bucket, key), Type: f.Type})
	}

	return media, nil
}

func (u *Uploader) uploadOne(ctx context.Context, bucket, key string, f StagedFile) error {
	r, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer r.Close()
	return u.store.Upload(ctx, bucket, key, r, f.ContentType)
}

// Open returns the staged file content for previews.
func (u *Uploader) Open(f StagedFile) (io.ReadSeekCloser, error) {
	if !strings.HasPrefix(filepath.Clean(f.Path), filepath.Clean(u.stagingDir)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("staged file outside staging directory")
	}
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (u *Uploader) sessionDir(sessionID string) string {
	return filepath.Join(u.stagingDir, filepath.Base(sessionID))
}
