package models

// CreateEntryRequest is the add-entry form. Media comes from the staged draft files.
type CreateEntryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Category    string `json:"category"`
}
