package models

type AddCommentRequest struct {
	Content    string `json:"content"`
	AuthorName string `json:"authorName"`
}
