package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	EntryID    uuid.UUID `json:"entryId"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
}

type CommentsResponse struct {
	Comments []Comment `json:"comments"`
}
