package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"io.winapps.babytracker/internal/domain"
)

// AlbumItemRepo persists album items.
type AlbumItemRepo struct {
	t table[domain.AlbumItem]
}

// NewAlbumItemRepo creates a new album item repository.
func NewAlbumItemRepo(db DB) *AlbumItemRepo {
	return &AlbumItemRepo{
		t: table[domain.AlbumItem]{
			db:           db,
			name:         "album_items",
			entity:       "album_item",
			columns:      []string{"id", "created_at", "album_id", "milestone_id", "media_url", "media_type", "caption"},
			queryable:    queryable("id", "created_at", "album_id", "milestone_id", "media_type"),
			defaultOrder: "created_at",
		},
	}
}

// List returns album items, newest first unless opts says otherwise.
func (r *AlbumItemRepo) List(ctx context.Context, opts ListOptions) ([]domain.AlbumItem, error) {
	return r.t.list(ctx, opts)
}

// ListByAlbum returns the items of one album, newest first.
func (r *AlbumItemRepo) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]domain.AlbumItem, error) {
	return r.t.list(ctx, ListOptions{Filter: Filter{"album_id": albumID}})
}

// Create inserts an album item.
func (r *AlbumItemRepo) Create(ctx context.Context, n domain.NewAlbumItem) (domain.AlbumItem, error) {
	if err := n.Normalize(); err != nil {
		return domain.AlbumItem{}, err
	}
	return r.t.insert(ctx, map[string]any{
		"album_id":     n.AlbumID,
		"milestone_id": n.MilestoneID,
		"media_url":    n.Media.URL,
		"media_type":   string(n.Media.Type),
		"caption":      nullableText(n.Caption),
	})
}

// UpdateCaption replaces the caption; an empty caption clears it.
func (r *AlbumItemRepo) UpdateCaption(ctx context.Context, id uuid.UUID, caption string) (domain.AlbumItem, error) {
	return r.t.update(ctx, id, map[string]any{"caption": nullableText(caption)})
}

// Delete removes a single album item.
func (r *AlbumItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.t.deleteByID(ctx, r.t.db, id)
}

func (r *AlbumItemRepo) detachMilestone(ctx context.Context, q execer, milestoneID uuid.UUID) error {
	query, args, err := psql.Update(r.t.name).
		Set("milestone_id", nil).
		Where(squirrel.Eq{"milestone_id": milestoneID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build detach album items: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("detach album items of milestone %s: %w", milestoneID, mapError(err, r.t.entity, uuid.Nil))
	}
	return nil
}
