package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"io.winapps.babytracker/internal/domain"
)

var milestoneColumns = []string{"id", "created_at", "title", "description", "date", "category", "media", "likes"}

// MilestoneRepo persists milestones.
type MilestoneRepo struct {
	t        table[domain.Milestone]
	comments *CommentRepo
	items    *AlbumItemRepo
}

// NewMilestoneRepo creates a new milestone repository.
func NewMilestoneRepo(db DB) *MilestoneRepo {
	return &MilestoneRepo{
		t: table[domain.Milestone]{
			db:           db,
			name:         "milestones",
			entity:       "milestone",
			columns:      milestoneColumns,
			queryable:    queryable("id", "created_at", "date", "category", "likes", "title"),
			defaultOrder: "date",
		},
		comments: NewCommentRepo(db),
		items:    NewAlbumItemRepo(db),
	}
}

// List returns milestones, newest date first unless opts says otherwise.
func (r *MilestoneRepo) List(ctx context.Context, opts ListOptions) ([]domain.Milestone, error) {
	return r.t.list(ctx, opts)
}

// Get returns one milestone or domain.ErrNotFound.
func (r *MilestoneRepo) Get(ctx context.Context, id uuid.UUID) (domain.Milestone, error) {
	return r.t.get(ctx, id)
}

// Create inserts a milestone with likes = 0; id and created_at come from the database.
func (r *MilestoneRepo) Create(ctx context.Context, n domain.NewMilestone) (domain.Milestone, error) {
	if err := n.Normalize(); err != nil {
		return domain.Milestone{}, err
	}
	values := map[string]any{
		"title":       n.Title,
		"description": nullableText(n.Description),
		"date":        n.Date,
		"category":    string(n.Category),
		"media":       n.Media,
		"likes":       0,
	}
	return r.t.insert(ctx, values)
}

// Update applies a partial update and returns the updated row.
func (r *MilestoneRepo) Update(ctx context.Context, id uuid.UUID, p domain.MilestonePatch) (domain.Milestone, error) {
	if err := p.Validate(); err != nil {
		return domain.Milestone{}, err
	}
	values := map[string]any{}
	if p.Title != nil {
		values["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		values["description"] = nullableText(*p.Description)
	}
	if p.Date != nil {
		values["date"] = *p.Date
	}
	if p.Category != nil {
		values["category"] = string(*p.Category)
	}
	return r.t.update(ctx, id, values)
}

// IncrementLikes adds one like atomically and returns the updated row.
func (r *MilestoneRepo) IncrementLikes(ctx context.Context, id uuid.UUID) (domain.Milestone, error) {
	return r.t.update(ctx, id, map[string]any{"likes": squirrel.Expr("likes + 1")})
}

// Delete removes a milestone together with its comments and clears the
// milestone link of album items that referenced it, in one transaction.
func (r *MilestoneRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.t.db, func(tx pgx.Tx) error {
		if _, err := r.comments.t.deleteWhere(ctx, tx, squirrel.Eq{"milestone_id": id}); err != nil {
			return fmt.Errorf("delete comments of milestone %s: %w", id, err)
		}
		if err := r.items.detachMilestone(ctx, tx, id); err != nil {
			return err
		}
		return r.t.deleteByID(ctx, tx, id)
	})
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
