package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnonymousAuthor is used when a comment is left without a name.
const AnonymousAuthor = "匿名"

// Comment is an immutable remark on a milestone.
type Comment struct {
	ID          uuid.UUID `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	MilestoneID uuid.UUID `db:"milestone_id"`
	Content     string    `db:"content"`
	AuthorName  string    `db:"author_name"`
}

// NewComment carries the user-supplied fields of a comment.
type NewComment struct {
	MilestoneID uuid.UUID
	Content     string
	AuthorName  string
}

// Normalize validates content and defaults a blank author to AnonymousAuthor.
func (n *NewComment) Normalize() error {
	if n.MilestoneID == uuid.Nil {
		return NewValidationError("milestoneId", "milestone is required")
	}
	if strings.TrimSpace(n.Content) == "" {
		return NewValidationError("content", "comment is empty")
	}
	n.AuthorName = strings.TrimSpace(n.AuthorName)
	if n.AuthorName == "" {
		n.AuthorName = AnonymousAuthor
	}
	return nil
}
