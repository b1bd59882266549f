package models

type UpdateEntryRequest struct {
	Title string `json:"title"`
}
