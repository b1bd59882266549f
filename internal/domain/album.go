package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Album is a named grouping of media, independent of milestones.
type Album struct {
	ID          uuid.UUID `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	CoverImage  *string   `db:"cover_image"`
}

// NewAlbum carries the user-supplied fields of an album.
type NewAlbum struct {
	Name        string
	Description string
	CoverImage  string
}

// Normalize trims and validates the album fields.
func (n *NewAlbum) Normalize() error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return NewValidationError("name", "请输入相册名称")
	}
	n.Description = strings.TrimSpace(n.Description)
	return nil
}

// AlbumPatch holds the fields of a partial album update.
type AlbumPatch struct {
	Name        *string
	Description *string
	CoverImage  *string
}

// AlbumItem is one media object inside an album. MilestoneID is a weak
// reference: deleting the milestone clears it.
type AlbumItem struct {
	ID          uuid.UUID  `db:"id"`
	CreatedAt   time.Time  `db:"created_at"`
	AlbumID     uuid.UUID  `db:"album_id"`
	MilestoneID *uuid.UUID `db:"milestone_id"`
	MediaURL    string     `db:"media_url"`
	MediaType   MediaType  `db:"media_type"`
	Caption     *string    `db:"caption"`
}

// NewAlbumItem carries the fields of an album item.
type NewAlbumItem struct {
	AlbumID     uuid.UUID
	MilestoneID *uuid.UUID
	Media       Media
	Caption     string
}

// Normalize validates the album item.
func (n *NewAlbumItem) Normalize() error {
	if n.AlbumID == uuid.Nil {
		return NewValidationError("albumId", "album is required")
	}
	if strings.TrimSpace(n.Media.URL) == "" {
		return NewValidationError("mediaUrl", "media url is required")
	}
	if n.Media.Type != MediaImage && n.Media.Type != MediaVideo {
		return NewValidationError("mediaType", "unknown media type "+string(n.Media.Type))
	}
	n.Caption = strings.TrimSpace(n.Caption)
	return nil
}
