package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"io.winapps.babytracker/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func milestoneRows() *pgxmock.Rows {
	return pgxmock.NewRows(milestoneColumns)
}

func TestMapError(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"check", &pgconn.PgError{Code: "23514"}, domain.ErrValidation},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in, "milestone", id), tt.want)
		})
	}
	assert.NoError(t, mapError(nil, "milestone", id))
}

func TestMilestoneRepo_List(t *testing.T) {
	now := time.Now()
	d1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id1, id2 := uuid.New(), uuid.New()
	media := domain.MediaList{{URL: "https://cdn/a.jpg", Type: domain.MediaImage}}

	tests := []struct {
		name    string
		opts    ListOptions
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		wantLen int
	}{
		{
			name: "default order is date desc",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM milestones ORDER BY date DESC, id DESC`).
					WillReturnRows(milestoneRows().
						AddRow(id1, now, "walk", (*string)(nil), d1, domain.CategoryFirst, media, 2).
						AddRow(id2, now, "laugh", (*string)(nil), d2, domain.CategoryPlay, domain.MediaList{}, 0))
			},
			wantLen: 2,
		},
		{
			name: "category filter",
			opts: ListOptions{Filter: Filter{"category": domain.CategoryHealth}},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT .* FROM milestones WHERE category = \$1 ORDER BY date DESC`).
					WithArgs(domain.CategoryHealth).
					WillReturnRows(milestoneRows())
			},
			wantLen: 0,
		},
		{
			name:    "unknown filter column rejected",
			opts:    ListOptions{Filter: Filter{"media; drop": 1}},
			setup:   func(mock pgxmock.PgxPoolIface) {},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown order column rejected",
			opts:    ListOptions{OrderBy: "random()"},
			setup:   func(mock pgxmock.PgxPoolIface) {},
			wantErr: domain.ErrValidation,
		},
		{
			name: "limit and ascending",
			opts: ListOptions{OrderBy: "likes", Ascending: true, Limit: 5},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`ORDER BY likes ASC, id ASC LIMIT 5`).
					WillReturnRows(milestoneRows())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)
			got, err := NewMilestoneRepo(mock).List(context.Background(), tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Len(t, got, tt.wantLen)
				assert.NotNil(t, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMilestoneRepo_Create(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("defaults category and starts with zero likes", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO milestones \(category,date,description,likes,media,title\) VALUES .* RETURNING id, created_at`).
			WithArgs("other", date, pgxmock.AnyArg(), 0, pgxmock.AnyArg(), "First steps").
			WillReturnRows(milestoneRows().
				AddRow(id, now, "First steps", (*string)(nil), date, domain.CategoryOther, domain.MediaList{}, 0))

		got, err := NewMilestoneRepo(mock).Create(context.Background(), domain.NewMilestone{
			Title: "  First steps ",
			Date:  date,
		})
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, domain.CategoryOther, got.Category)
		assert.Zero(t, got.Likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank title never reaches the database", func(t *testing.T) {
		mock := newMock(t)
		_, err := NewMilestoneRepo(mock).Create(context.Background(), domain.NewMilestone{Title: "   ", Date: date})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check violation maps to validation", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO milestones`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23514"})
		_, err := NewMilestoneRepo(mock).Create(context.Background(), domain.NewMilestone{Title: "x", Date: date})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestMilestoneRepo_IncrementLikes(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	t.Run("increments in the database", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE milestones SET likes = likes \+ 1 WHERE id = \$1 RETURNING`).
			WithArgs(id).
			WillReturnRows(milestoneRows().
				AddRow(id, now, "walk", (*string)(nil), now, domain.CategoryFirst, domain.MediaList{}, 4))
		got, err := NewMilestoneRepo(mock).IncrementLikes(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Likes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE milestones`).WithArgs(id).WillReturnError(pgx.ErrNoRows)
		_, err := NewMilestoneRepo(mock).IncrementLikes(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMilestoneRepo_Update(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	title := "renamed"

	t.Run("partial update", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE milestones SET title = \$1 WHERE id = \$2 RETURNING`).
			WithArgs(title, id).
			WillReturnRows(milestoneRows().
				AddRow(id, now, title, (*string)(nil), now, domain.CategoryOther, domain.MediaList{}, 0))
		got, err := NewMilestoneRepo(mock).Update(context.Background(), id, domain.MilestonePatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("title is stored trimmed", func(t *testing.T) {
		mock := newMock(t)
		padded := "  renamed \t"
		mock.ExpectQuery(`UPDATE milestones SET title = \$1 WHERE id = \$2 RETURNING id, created_at, title, description, date, category, media, likes$`).
			WithArgs(title, id).
			WillReturnRows(milestoneRows().
				AddRow(id, now, title, (*string)(nil), now, domain.CategoryOther, domain.MediaList{}, 0))
		got, err := NewMilestoneRepo(mock).Update(context.Background(), id, domain.MilestonePatch{Title: &padded})
		require.NoError(t, err)
		assert.Equal(t, title, got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty patch reads current row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM milestones WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(milestoneRows().
				AddRow(id, now, "same", (*string)(nil), now, domain.CategoryOther, domain.MediaList{}, 0))
		got, err := NewMilestoneRepo(mock).Update(context.Background(), id, domain.MilestonePatch{})
		require.NoError(t, err)
		assert.Equal(t, "same", got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank title rejected", func(t *testing.T) {
		mock := newMock(t)
		blank := " "
		_, err := NewMilestoneRepo(mock).Update(context.Background(), id, domain.MilestonePatch{Title: &blank})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestMilestoneRepo_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "removes comments, detaches album items, then the milestone",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM comments WHERE milestone_id = \$1`).
					WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 3))
				mock.ExpectExec(`UPDATE album_items SET milestone_id = \$1 WHERE milestone_id = \$2`).
					WithArgs(pgxmock.AnyArg(), id).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`DELETE FROM milestones WHERE id = \$1`).
					WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "missing milestone rolls back",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM comments`).
					WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
				mock.ExpectExec(`UPDATE album_items`).
					WithArgs(pgxmock.AnyArg(), id).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectExec(`DELETE FROM milestones`).
					WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "comment delete failure aborts",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectExec(`DELETE FROM comments`).
					WithArgs(id).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)
			err := NewMilestoneRepo(mock).Delete(context.Background(), id)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, domain.ErrNotFound):
				assert.ErrorIs(t, err, domain.ErrNotFound)
			default:
				assert.ErrorContains(t, err, tt.wantErr.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCommentRepo(t *testing.T) {
	milestoneID := uuid.New()
	now := time.Now()
	cols := []string{"id", "created_at", "milestone_id", "content", "author_name"}

	t.Run("list by milestone is oldest first", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM comments WHERE milestone_id = \$1 ORDER BY created_at ASC, id ASC`).
			WithArgs(milestoneID).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(uuid.New(), now.Add(-time.Hour), milestoneID, "first", "奶奶").
				AddRow(uuid.New(), now, milestoneID, "second", domain.AnonymousAuthor))
		got, err := NewCommentRepo(mock).ListByMilestone(context.Background(), milestoneID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Content)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blank author becomes anonymous", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO comments \(author_name,content,milestone_id\)`).
			WithArgs(domain.AnonymousAuthor, "so cute", milestoneID).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(uuid.New(), now, milestoneID, "so cute", domain.AnonymousAuthor))
		got, err := NewCommentRepo(mock).Create(context.Background(), domain.NewComment{
			MilestoneID: milestoneID,
			Content:     "so cute",
			AuthorName:  "  ",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AnonymousAuthor, got.AuthorName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing milestone maps foreign key violation", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO comments`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23503"})
		_, err := NewCommentRepo(mock).Create(context.Background(), domain.NewComment{MilestoneID: milestoneID, Content: "hi"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete one comment", func(t *testing.T) {
		mock := newMock(t)
		id := uuid.New()
		mock.ExpectExec(`DELETE FROM comments WHERE id = \$1`).
			WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, NewCommentRepo(mock).Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAlbumRepo_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("removes items then the album", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM album_items WHERE album_id = \$1`).
			WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 4))
		mock.ExpectExec(`DELETE FROM albums WHERE id = \$1`).
			WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		require.NoError(t, NewAlbumRepo(mock).Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin().WillReturnError(errors.New("pool closed"))
		assert.Error(t, NewAlbumRepo(mock).Delete(context.Background(), id))
	})
}

func TestAlbumRepo_CreateAndUpdate(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	cols := []string{"id", "created_at", "name", "description", "cover_image"}

	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO albums \(cover_image,description,name\)`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Summer").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(id, now, "Summer", (*string)(nil), (*string)(nil)))
	repo := NewAlbumRepo(mock)

	got, err := repo.Create(context.Background(), domain.NewAlbum{Name: " Summer "})
	require.NoError(t, err)
	assert.Equal(t, "Summer", got.Name)

	_, err = repo.Create(context.Background(), domain.NewAlbum{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	blank := ""
	_, err = repo.Update(context.Background(), id, domain.AlbumPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlbumItemRepo(t *testing.T) {
	albumID := uuid.New()
	milestoneID := uuid.New()
	now := time.Now()
	cols := []string{"id", "created_at", "album_id", "milestone_id", "media_url", "media_type", "caption"}

	t.Run("list by album", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .* FROM album_items WHERE album_id = \$1 ORDER BY created_at DESC`).
			WithArgs(albumID).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(uuid.New(), now, albumID, &milestoneID, "https://cdn/v.mp4", domain.MediaVideo, (*string)(nil)).
				AddRow(uuid.New(), now, albumID, (*uuid.UUID)(nil), "https://cdn/p.png", domain.MediaImage, (*string)(nil)))
		got, err := NewAlbumItemRepo(mock).ListByAlbum(context.Background(), albumID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, domain.MediaVideo, got[0].MediaType)
		assert.Nil(t, got[1].MilestoneID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create rejects unknown media type", func(t *testing.T) {
		mock := newMock(t)
		_, err := NewAlbumItemRepo(mock).Create(context.Background(), domain.NewAlbumItem{
			AlbumID: albumID,
			Media:   domain.Media{URL: "https://cdn/x", Type: "audio"},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("update caption", func(t *testing.T) {
		mock := newMock(t)
		id := uuid.New()
		caption := "sleepy"
		mock.ExpectQuery(`UPDATE album_items SET caption = \$1 WHERE id = \$2 RETURNING`).
			WithArgs(pgxmock.AnyArg(), id).
			WillReturnRows(pgxmock.NewRows(cols).
				AddRow(id, now, albumID, (*uuid.UUID)(nil), "https://cdn/p.png", domain.MediaImage, &caption))
		got, err := NewAlbumItemRepo(mock).UpdateCaption(context.Background(), id, caption)
		require.NoError(t, err)
		require.NotNil(t, got.Caption)
		assert.Equal(t, caption, *got.Caption)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing item", func(t *testing.T) {
		mock := newMock(t)
		id := uuid.New()
		mock.ExpectExec(`DELETE FROM album_items WHERE id = \$1`).
			WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, NewAlbumItemRepo(mock).Delete(context.Background(), id), domain.ErrNotFound)
	})
}
