package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"io.winapps.babytracker/internal/domain"
)

// AlbumRepo persists albums.
type AlbumRepo struct {
	t     table[domain.Album]
	items *AlbumItemRepo
}

// NewAlbumRepo creates a new album repository.
func NewAlbumRepo(db DB) *AlbumRepo {
	return &AlbumRepo{
		t: table[domain.Album]{
			db:           db,
			name:         "albums",
			entity:       "album",
			columns:      []string{"id", "created_at", "name", "description", "cover_image"},
			queryable:    queryable("id", "created_at", "name"),
			defaultOrder: "created_at",
		},
		items: NewAlbumItemRepo(db),
	}
}

// List returns albums, newest first unless opts says otherwise.
func (r *AlbumRepo) List(ctx context.Context, opts ListOptions) ([]domain.Album, error) {
	return r.t.list(ctx, opts)
}

// Get returns one album or domain.ErrNotFound.
func (r *AlbumRepo) Get(ctx context.Context, id uuid.UUID) (domain.Album, error) {
	return r.t.get(ctx, id)
}

// Create inserts an album.
func (r *AlbumRepo) Create(ctx context.Context, n domain.NewAlbum) (domain.Album, error) {
	if err := n.Normalize(); err != nil {
		return domain.Album{}, err
	}
	return r.t.insert(ctx, map[string]any{
		"name":        n.Name,
		"description": nullableText(n.Description),
		"cover_image": nullableText(n.CoverImage),
	})
}

// Update applies a partial update and returns the updated row.
func (r *AlbumRepo) Update(ctx context.Context, id uuid.UUID, p domain.AlbumPatch) (domain.Album, error) {
	values := map[string]any{}
	if p.Name != nil {
		n := domain.NewAlbum{Name: *p.Name}
		if err := n.Normalize(); err != nil {
			return domain.Album{}, err
		}
		values["name"] = n.Name
	}
	if p.Description != nil {
		values["description"] = nullableText(*p.Description)
	}
	if p.CoverImage != nil {
		values["cover_image"] = nullableText(*p.CoverImage)
	}
	return r.t.update(ctx, id, values)
}

// Delete removes an album and all of its items in one transaction.
func (r *AlbumRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.t.db, func(tx pgx.Tx) error {
		if _, err := r.items.t.deleteWhere(ctx, tx, squirrel.Eq{"album_id": id}); err != nil {
			return fmt.Errorf("delete items of album %s: %w", id, err)
		}
		return r.t.deleteByID(ctx, tx, id)
	})
}
