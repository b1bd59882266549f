package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// MediaType classifies a stored media object.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ClassifyMIME maps a MIME type to a MediaType: video/* is a video,
// everything else an image.
func ClassifyMIME(mimeType string) MediaType {
	if strings.HasPrefix(strings.ToLower(mimeType), "video/") {
		return MediaVideo
	}
	return MediaImage
}

// Bucket returns the storage bucket holding objects of this type.
func (t MediaType) Bucket() string {
	if t == MediaVideo {
		return "videos"
	}
	return "photos"
}

// Media is one attached object of an entry.
type Media struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

// MediaList is the ordered media of an entry, stored as a JSONB array.
type MediaList []Media

// URLs returns the urls in order.
func (l MediaList) URLs() []string {
	out := make([]string, len(l))
	for i, m := range l {
		out[i] = m.URL
	}
	return out
}

// Types returns the type tags in order, index-aligned with URLs.
func (l MediaList) Types() []MediaType {
	out := make([]MediaType, len(l))
	for i, m := range l {
		out[i] = m.Type
	}
	return out
}

// Scan implements sql.Scanner for the jsonb column.
func (l *MediaList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = MediaList{}
		return nil
	case MediaList:
		*l = v
		return nil
	case []Media:
		*l = v
		return nil
	case []byte:
		return l.unmarshal(v)
	case string:
		return l.unmarshal([]byte(v))
	default:
		return fmt.Errorf("media list: unsupported source %T", src)
	}
}

func (l *MediaList) unmarshal(b []byte) error {
	var out MediaList
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("media list: %w", err)
	}
	if out == nil {
		out = MediaList{}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l MediaList) Value() (driver.Value, error) {
	if l == nil {
		l = MediaList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
