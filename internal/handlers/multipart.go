package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/uploader"
)

// readIncoming opens the "files" parts of a multipart request. The returned
// closer must be called once the files have been consumed.
func readIncoming(c *gin.Context, maxRequest int64) ([]uploader.Incoming, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequest)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, func() {}, domain.NewValidationError("files", "文件过大")
		}
		return nil, func() {}, domain.NewValidationError("files", "Invalid multipart form")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, func() {}, domain.NewValidationError("files", "请选择照片或视频")
	}

	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	incoming := make([]uploader.Incoming, 0, len(headers))
	for _, fh := range headers {
		f, err := openPart(fh)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		incoming = append(incoming, uploader.Incoming{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     f,
		})
	}
	return incoming, closeAll, nil
}

func openPart(fh *multipart.FileHeader) (multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
	}
	return f, nil
}
