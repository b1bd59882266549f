package models

type CreateAlbumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
