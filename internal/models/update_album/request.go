package models

// UpdateAlbumRequest carries the album fields to change. Omitted fields are kept.
type UpdateAlbumRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
}
