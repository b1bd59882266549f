package models

import "github.com/google/uuid"

// AddAlbumItemsRequest copies the media of an entry into an album. Uploads
// use multipart form fields "files" and "caption" instead.
type AddAlbumItemsRequest struct {
	EntryID uuid.UUID `json:"entryId" binding:"required"`
	Caption string    `json:"caption"`
}
