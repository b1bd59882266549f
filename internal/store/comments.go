package store

import (
	"context"

	"github.com/google/uuid"

	"io.winapps.babytracker/internal/domain"
)

// CommentRepo persists comments. Comments are immutable, so there is no Update.
type CommentRepo struct {
	t table[domain.Comment]
}

// NewCommentRepo creates a new comment repository.
func NewCommentRepo(db DB) *CommentRepo {
	return &CommentRepo{
		t: table[domain.Comment]{
			db:           db,
			name:         "comments",
			entity:       "comment",
			columns:      []string{"id", "created_at", "milestone_id", "content", "author_name"},
			queryable:    queryable("id", "created_at", "milestone_id", "author_name"),
			defaultOrder: "created_at",
			defaultAsc:   true,
		},
	}
}

// List returns comments, oldest first unless opts says otherwise.
func (r *CommentRepo) List(ctx context.Context, opts ListOptions) ([]domain.Comment, error) {
	return r.t.list(ctx, opts)
}

// ListByMilestone returns the comments of one milestone, oldest first.
func (r *CommentRepo) ListByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]domain.Comment, error) {
	return r.t.list(ctx, ListOptions{
		Filter:    Filter{"milestone_id": milestoneID},
		OrderBy:   "created_at",
		Ascending: true,
	})
}

// Create inserts a comment, defaulting a blank author to domain.AnonymousAuthor.
func (r *CommentRepo) Create(ctx context.Context, n domain.NewComment) (domain.Comment, error) {
	if err := n.Normalize(); err != nil {
		return domain.Comment{}, err
	}
	return r.t.insert(ctx, map[string]any{
		"milestone_id": n.MilestoneID,
		"content":      n.Content,
		"author_name":  n.AuthorName,
	})
}

// Delete removes a single comment.
func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.t.deleteByID(ctx, r.t.db, id)
}
