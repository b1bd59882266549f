package models

type UpdateAlbumItemRequest struct {
	Caption string `json:"caption"`
}
