// Package view holds the per-session view state machine and composes the
// pages rendered by the HTTP layer. Every mutation runs as
// mutate, then onSuccess on the session state, then a refetch of the page.
package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/agecalc"
	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/session"
	"io.winapps.babytracker/internal/store"
	"io.winapps.babytracker/internal/uploader"
)

// MilestoneStore is the milestone collection.
type MilestoneStore interface {
	List(ctx context.Context, opts store.ListOptions) ([]domain.Milestone, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Milestone, error)
	Create(ctx context.Context, n domain.NewMilestone) (domain.Milestone, error)
	Update(ctx context.Context, id uuid.UUID, p domain.MilestonePatch) (domain.Milestone, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (domain.Milestone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CommentStore is the comment collection.
type CommentStore interface {
	ListByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]domain.Comment, error)
	Create(ctx context.Context, n domain.NewComment) (domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlbumStore is the album collection.
type AlbumStore interface {
	List(ctx context.Context, opts store.ListOptions) ([]domain.Album, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Album, error)
	Create(ctx context.Context, n domain.NewAlbum) (domain.Album, error)
	Update(ctx context.Context, id uuid.UUID, p domain.AlbumPatch) (domain.Album, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AlbumItemStore is the album item collection.
type AlbumItemStore interface {
	ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]domain.AlbumItem, error)
	Create(ctx context.Context, n domain.NewAlbumItem) (domain.AlbumItem, error)
	UpdateCaption(ctx context.Context, id uuid.UUID, caption string) (domain.AlbumItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MediaUploader stages and commits media files.
type MediaUploader interface {
	Stage(ctx context.Context, sessionID string, existing []uploader.StagedFile, incoming []uploader.Incoming) ([]uploader.StagedFile, []uploader.Rejected, error)
	Remove(staged []uploader.StagedFile, index int) ([]uploader.StagedFile, error)
	Discard(sessionID string) error
	Commit(ctx context.Context, staged []uploader.StagedFile) (domain.MediaList, error)
	Open(f uploader.StagedFile) (io.ReadSeekCloser, error)
}

// draftAction is the guard key shared by every action that reads or
// writes the staged files of a session.
const draftAction = "draft"

// Deps are the collaborators of a Controller.
type Deps struct {
	Milestones MilestoneStore
	Comments   CommentStore
	Albums     AlbumStore
	AlbumItems AlbumItemStore
	Uploads    MediaUploader
	States     StateStore
	Guard      Guard
}

// Options configures a Controller.
type Options struct {
	Birthday      string
	MaxFiles      int
	CommitTimeout time.Duration
	PreviewBase   string
}

// Controller drives the view state of every session.
type Controller struct {
	deps   Deps
	opts   Options
	logger *zap.SugaredLogger
}

// NewController creates a view controller.
func NewController(deps Deps, opts Options, logger *zap.SugaredLogger) *Controller {
	return &Controller{deps: deps, opts: opts, logger: logger}
}

// EntryInput is the add-entry form as submitted.
type EntryInput struct {
	Title       string
	Description string
	Date        string
	Category    string
}

func (in EntryInput) toNew() (domain.NewMilestone, error) {
	n := domain.NewMilestone{Title: in.Title, Description: in.Description}
	if strings.TrimSpace(in.Title) == "" {
		return n, domain.NewValidationError("title", "请输入标题")
	}
	date, err := agecalc.ParseDate(in.Date)
	if err != nil {
		return n, domain.NewValidationError("date", "请选择日期")
	}
	n.Date = date
	cat, err := domain.ParseCategory(in.Category)
	if err != nil {
		return n, err
	}
	n.Category = cat
	if err := n.Normalize(); err != nil {
		return n, err
	}
	return n, nil
}

func authorize(s session.Session) error {
	if !s.Authenticated || s.ID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

func (c *Controller) load(ctx context.Context, s session.Session) (State, error) {
	if err := authorize(s); err != nil {
		return State{}, err
	}
	st, ok, err := c.deps.States.Load(ctx, s.ID)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return initialState(c.opts.Birthday), nil
	}
	if st.Tab == "" {
		st.Tab = TabTimeline
	}
	if st.Category == "" {
		st.Category = domain.FilterAll
	}
	if st.Birthday == "" {
		st.Birthday = c.opts.Birthday
	}
	return st, nil
}

// Render returns the current page of the session.
func (c *Controller) Render(ctx context.Context, s session.Session) (Page, error) {
	st, err := c.load(ctx, s)
	if err != nil {
		return Page{}, err
	}
	return c.render(ctx, s.ID, st)
}

func (c *Controller) render(ctx context.Context, sessionID string, st State) (Page, error) {
	page := Page{Tab: st.Tab, Category: st.Category, Birthday: st.Birthday}

	switch st.Tab {
	case TabTimeline:
		ms, err := c.deps.Milestones.List(ctx, store.ListOptions{})
		if err != nil {
			return Page{}, fmt.Errorf("failed to fetch milestones: %w", err)
		}
		birthday, err := agecalc.ParseDate(st.Birthday)
		if err != nil {
			birthday, _ = agecalc.ParseDate(c.opts.Birthday)
		}
		page.Timeline = buildTimeline(ms, st.Category, birthday)

	case TabAlbums:
		albums, err := c.deps.Albums.List(ctx, store.ListOptions{})
		if err != nil {
			return Page{}, fmt.Errorf("failed to fetch albums: %w", err)
		}
		page.Albums = &AlbumsPage{Albums: albums}
		if st.SelectedAlbumID != nil {
			detail, err := c.albumDetail(ctx, *st.SelectedAlbumID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// the album went away underneath the session
				st.SelectedAlbumID = nil
				if err := c.deps.States.Save(ctx, sessionID, st); err != nil {
					c.logger.Warnw("Failed to clear stale album selection", "session_id", sessionID, "error", err)
				}
			case err != nil:
				return Page{}, err
			default:
				page.Albums.Selected = detail
			}
		}

	case TabAdd:
		page.Draft = buildDraft(st.Draft, c.opts.MaxFiles, c.opts.PreviewBase)
	}

	return page, nil
}

func (c *Controller) albumDetail(ctx context.Context, id uuid.UUID) (*AlbumDetail, error) {
	album, err := c.deps.Albums.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := c.deps.AlbumItems.ListByAlbum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album items: %w", err)
	}
	return &AlbumDetail{Album: album, Items: items}, nil
}

// navigate applies a pure state change and renders the result.
func (c *Controller) navigate(ctx context.Context, s session.Session, change func(st *State) error) (Page, error) {
	st, err := c.load(ctx, s)
	if err != nil {
		return Page{}, err
	}
	if err := change(&st); err != nil {
		return Page{}, err
	}
	if err := c.deps.States.Save(ctx, s.ID, st); err != nil {
		return Page{}, err
	}
	return c.render(ctx, s.ID, st)
}

// mutate runs do under the in-flight guard for action. On success it
// applies onSuccess to the session state as it is after do, which may have
// been changed by navigation meanwhile, and refetches the page.
func (c *Controller) mutate(ctx context.Context, s session.Session, action string, do func(ctx context.Context, st State) error, onSuccess func(st *State)) (Page, error) {
	if err := authorize(s); err != nil {
		return Page{}, err
	}
	release, err := c.deps.Guard.Acquire(ctx, s.ID, action)
	if err != nil {
		return Page{}, err
	}
	defer release()

	st, err := c.load(ctx, s)
	if err != nil {
		return Page{}, err
	}
	if err := do(ctx, st); err != nil {
		return Page{}, err
	}

	dctx := context.WithoutCancel(ctx)
	st, err = c.load(dctx, s)
	if err != nil {
		return Page{}, err
	}
	if onSuccess != nil {
		onSuccess(&st)
		if err := c.deps.States.Save(dctx, s.ID, st); err != nil {
			return Page{}, err
		}
	}
	return c.render(ctx, s.ID, st)
}

// SwitchTab moves to tab. Leaving the add tab discards the draft unless an
// entry is being created from it, and leaving the albums tab drops the
// album selection.
func (c *Controller) SwitchTab(ctx context.Context, s session.Session, tab Tab) (Page, error) {
	return c.navigate(ctx, s, func(st *State) error {
		if tab == st.Tab {
			return nil
		}
		if st.Tab == TabAdd {
			c.releaseDraft(ctx, s.ID, st)
		}
		st.SelectedAlbumID = nil
		st.Tab = tab
		return nil
	})
}

// SetFilter sets the timeline category filter.
func (c *Controller) SetFilter(ctx context.Context, s session.Session, filter string) (Page, error) {
	f, err := domain.ParseFilter(filter)
	if err != nil {
		return Page{}, err
	}
	return c.navigate(ctx, s, func(st *State) error {
		st.Category = f
		return nil
	})
}

// SetBirthday changes the birth date age labels are computed from.
func (c *Controller) SetBirthday(ctx context.Context, s session.Session, date string) (Page, error) {
	d, err := agecalc.ParseDate(date)
	if err != nil {
		return Page{}, domain.NewValidationError("birthday", "请输入有效日期 (YYYY-MM-DD)")
	}
	return c.navigate(ctx, s, func(st *State) error {
		st.Birthday = d.Format(agecalc.DateLayout)
		return nil
	})
}

// OpenAlbum drills into an album.
func (c *Controller) OpenAlbum(ctx context.Context, s session.Session, albumID uuid.UUID) (Page, error) {
	return c.navigate(ctx, s, func(st *State) error {
		if _, err := c.deps.Albums.Get(ctx, albumID); err != nil {
			return err
		}
		st.Tab = TabAlbums
		st.SelectedAlbumID = &albumID
		return nil
	})
}

// CloseAlbum goes back to the album list.
func (c *Controller) CloseAlbum(ctx context.Context, s session.Session) (Page, error) {
	return c.navigate(ctx, s, func(st *State) error {
		st.SelectedAlbumID = nil
		return nil
	})
}

// StageFiles adds selected files to the draft. Rejected files are listed on the page.
func (c *Controller) StageFiles(ctx context.Context, s session.Session, incoming []uploader.Incoming) (Page, error) {
	var rejected []uploader.Rejected
	var staged []uploader.StagedFile
	page, err := c.mutate(ctx, s, draftAction,
		func(ctx context.Context, st State) error {
			var err error
			staged, rejected, err = c.deps.Uploads.Stage(ctx, s.ID, st.Draft.Staged, incoming)
			return err
		},
		func(st *State) {
			st.Tab = TabAdd
			st.Draft.Staged = staged
		})
	if err != nil {
		return Page{}, err
	}
	page.Rejected = rejected
	return page, nil
}

// RemoveStaged drops one staged file from the draft.
func (c *Controller) RemoveStaged(ctx context.Context, s session.Session, index int) (Page, error) {
	var staged []uploader.StagedFile
	return c.mutate(ctx, s, draftAction,
		func(ctx context.Context, st State) error {
			var err error
			staged, err = c.deps.Uploads.Remove(st.Draft.Staged, index)
			return err
		},
		func(st *State) {
			st.Draft.Staged = staged
		})
}

// OpenStaged opens the staged file at index for previewing. The caller
// closes the returned content.
func (c *Controller) OpenStaged(ctx context.Context, s session.Session, index int) (uploader.StagedFile, io.ReadSeekCloser, error) {
	st, err := c.load(ctx, s)
	if err != nil {
		return uploader.StagedFile{}, nil, err
	}
	if index < 0 || index >= len(st.Draft.Staged) {
		return uploader.StagedFile{}, nil, fmt.Errorf("staged file %d: %w", index, domain.ErrNotFound)
	}
	f := st.Draft.Staged[index]
	content, err := c.deps.Uploads.Open(f)
	if errors.Is(err, fs.ErrNotExist) {
		return uploader.StagedFile{}, nil, fmt.Errorf("staged file %d: %w", index, domain.ErrNotFound)
	}
	if err != nil {
		return uploader.StagedFile{}, nil, err
	}
	return f, content, nil
}

// CreateEntry uploads the staged files and inserts the milestone. The
// upload and insert run detached from ctx, so a client going away does
// not abort them. On success the draft is cleared and the timeline shown;
// on failure the draft is kept for a retry. Leaving the add tab while the
// entry is being created does not touch the staged files.
func (c *Controller) CreateEntry(ctx context.Context, s session.Session, in EntryInput) (Page, error) {
	n, err := in.toNew()
	if err != nil {
		return Page{}, err
	}
	return c.mutate(ctx, s, draftAction,
		func(ctx context.Context, st State) error {
			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CommitTimeout)
			defer cancel()

			media, err := c.deps.Uploads.Commit(wctx, st.Draft.Staged)
			if err != nil {
				c.dropAbandonedDraft(context.WithoutCancel(ctx), s.ID)
				return err
			}
			n.Media = media
			m, err := c.deps.Milestones.Create(wctx, n)
			if err != nil {
				if len(media) > 0 {
					c.logger.Warnw("Milestone insert failed after upload, objects orphaned",
						"session_id", s.ID, "urls", media.URLs(), "error", err)
				}
				c.dropAbandonedDraft(context.WithoutCancel(ctx), s.ID)
				return err
			}
			c.logger.Infow("Milestone created", "session_id", s.ID, "milestone_id", m.ID, "media", len(media))
			return nil
		},
		func(st *State) {
			c.discardFiles(s.ID)
			st.Draft = Draft{}
			st.Tab = TabTimeline
		})
}

// Like increments the like counter of a milestone.
func (c *Controller) Like(ctx context.Context, s session.Session, id uuid.UUID) (Page, error) {
	return c.mutate(ctx, s, "like:"+id.String(),
		func(ctx context.Context, _ State) error {
			_, err := c.deps.Milestones.IncrementLikes(ctx, id)
			return err
		}, nil)
}

// EditTitle renames a milestone.
func (c *Controller) EditTitle(ctx context.Context, s session.Session, id uuid.UUID, title string) (Page, error) {
	patch := domain.MilestonePatch{Title: &title}
	if err := patch.Validate(); err != nil {
		return Page{}, err
	}
	return c.mutate(ctx, s, "edit:"+id.String(),
		func(ctx context.Context, _ State) error {
			_, err := c.deps.Milestones.Update(ctx, id, patch)
			return err
		}, nil)
}

// DeleteEntry deletes a milestone with its comments.
func (c *Controller) DeleteEntry(ctx context.Context, s session.Session, id uuid.UUID) (Page, error) {
	return c.mutate(ctx, s, "delete:"+id.String(),
		func(ctx context.Context, _ State) error {
			return c.deps.Milestones.Delete(ctx, id)
		}, nil)
}

// Comments lists the comments of a milestone, oldest first.
func (c *Controller) Comments(ctx context.Context, s session.Session, milestoneID uuid.UUID) ([]domain.Comment, error) {
	if _, err := c.load(ctx, s); err != nil {
		return nil, err
	}
	return c.deps.Comments.ListByMilestone(ctx, milestoneID)
}

// AddComment adds a comment and returns the refetched comment list.
func (c *Controller) AddComment(ctx context.Context, s session.Session, milestoneID uuid.UUID, content, author string) ([]domain.Comment, error) {
	if _, err := c.load(ctx, s); err != nil {
		return nil, err
	}
	n := domain.NewComment{MilestoneID: milestoneID, Content: content, AuthorName: author}
	if err := n.Normalize(); err != nil {
		return nil, err
	}

	release, err := c.deps.Guard.Acquire(ctx, s.ID, "comment:"+milestoneID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := c.deps.Comments.Create(ctx, n); err != nil {
		return nil, err
	}
	return c.deps.Comments.ListByMilestone(ctx, milestoneID)
}

// DeleteComment removes a comment of a milestone and returns the refetched
// comment list.
func (c *Controller) DeleteComment(ctx context.Context, s session.Session, milestoneID, commentID uuid.UUID) ([]domain.Comment, error) {
	if _, err := c.load(ctx, s); err != nil {
		return nil, err
	}
	release, err := c.deps.Guard.Acquire(ctx, s.ID, "delete-comment:"+commentID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	comments, err := c.deps.Comments.ListByMilestone(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, cm := range comments {
		if cm.ID == commentID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("comment %s on milestone %s: %w", commentID, milestoneID, domain.ErrNotFound)
	}
	if err := c.deps.Comments.Delete(ctx, commentID); err != nil {
		return nil, err
	}
	return c.deps.Comments.ListByMilestone(ctx, milestoneID)
}

// CreateAlbum creates an album.
func (c *Controller) CreateAlbum(ctx context.Context, s session.Session, name, description string) (Page, error) {
	n := domain.NewAlbum{Name: name, Description: description}
	if err := n.Normalize(); err != nil {
		return Page{}, err
	}
	return c.mutate(ctx, s, "create-album",
		func(ctx context.Context, _ State) error {
			_, err := c.deps.Albums.Create(ctx, n)
			return err
		},
		func(st *State) {
			st.Tab = TabAlbums
		})
}

// UpdateAlbum renames an album or changes its description or cover image.
// Nil fields are left as they are.
func (c *Controller) UpdateAlbum(ctx context.Context, s session.Session, id uuid.UUID, patch domain.AlbumPatch) (Page, error) {
	if patch.Name == nil && patch.Description == nil && patch.CoverImage == nil {
		return Page{}, domain.NewValidationError("name", "没有需要保存的修改")
	}
	return c.mutate(ctx, s, "edit-album:"+id.String(),
		func(ctx context.Context, _ State) error {
			_, err := c.deps.Albums.Update(ctx, id, patch)
			return err
		},
		func(st *State) {
			st.Tab = TabAlbums
		})
}

// DeleteAlbum deletes an album with its items. Deleting the opened album
// returns to the album list.
func (c *Controller) DeleteAlbum(ctx context.Context, s session.Session, id uuid.UUID) (Page, error) {
	return c.mutate(ctx, s, "delete-album:"+id.String(),
		func(ctx context.Context, _ State) error {
			return c.deps.Albums.Delete(ctx, id)
		},
		func(st *State) {
			if st.SelectedAlbumID != nil && *st.SelectedAlbumID == id {
				st.SelectedAlbumID = nil
			}
		})
}

// AddAlbumItemsFromEntry copies every media object of a milestone into an album.
func (c *Controller) AddAlbumItemsFromEntry(ctx context.Context, s session.Session, albumID, milestoneID uuid.UUID, caption string) (Page, error) {
	return c.mutate(ctx, s, "album-items:"+albumID.String(),
		func(ctx context.Context, _ State) error {
			m, err := c.deps.Milestones.Get(ctx, milestoneID)
			if err != nil {
				return err
			}
			if !m.HasMedia() {
				return domain.NewValidationError("milestoneId", "该记录没有照片或视频")
			}
			return c.createItems(ctx, albumID, &m.ID, m.Media, caption)
		},
		func(st *State) {
			st.Tab = TabAlbums
			st.SelectedAlbumID = &albumID
		})
}

// AddAlbumItemsFromUpload uploads files straight into an album.
func (c *Controller) AddAlbumItemsFromUpload(ctx context.Context, s session.Session, albumID uuid.UUID, incoming []uploader.Incoming, caption string) (Page, error) {
	var rejected []uploader.Rejected
	stagingKey := s.ID + "-album"

	page, err := c.mutate(ctx, s, "album-items:"+albumID.String(),
		func(ctx context.Context, _ State) error {
			if _, err := c.deps.Albums.Get(ctx, albumID); err != nil {
				return err
			}
			defer func() {
				if err := c.deps.Uploads.Discard(stagingKey); err != nil {
					c.logger.Warnw("Failed to discard album staging", "session_id", s.ID, "error", err)
				}
			}()

			staged, rej, err := c.deps.Uploads.Stage(ctx, stagingKey, nil, incoming)
			if err != nil {
				return err
			}
			rejected = rej
			if len(staged) == 0 {
				return domain.NewValidationError("files", "请选择照片或视频")
			}

			wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.CommitTimeout)
			defer cancel()
			media, err := c.deps.Uploads.Commit(wctx, staged)
			if err != nil {
				return err
			}
			return c.createItems(wctx, albumID, nil, media, caption)
		},
		func(st *State) {
			st.Tab = TabAlbums
			st.SelectedAlbumID = &albumID
		})
	if err != nil {
		return Page{}, err
	}
	page.Rejected = rejected
	return page, nil
}

func (c *Controller) createItems(ctx context.Context, albumID uuid.UUID, milestoneID *uuid.UUID, media domain.MediaList, caption string) error {
	for _, m := range media {
		_, err := c.deps.AlbumItems.Create(ctx, domain.NewAlbumItem{
			AlbumID:     albumID,
			MilestoneID: milestoneID,
			Media:       m,
			Caption:     caption,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// findAlbumItem fails with domain.ErrNotFound unless itemID is in albumID.
func (c *Controller) findAlbumItem(ctx context.Context, albumID, itemID uuid.UUID) error {
	items, err := c.deps.AlbumItems.ListByAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID == itemID {
			return nil
		}
	}
	return fmt.Errorf("album item %s in album %s: %w", itemID, albumID, domain.ErrNotFound)
}

// EditAlbumItemCaption replaces the caption of an album item. An empty
// caption clears it.
func (c *Controller) EditAlbumItemCaption(ctx context.Context, s session.Session, albumID, itemID uuid.UUID, caption string) (Page, error) {
	return c.mutate(ctx, s, "edit-item:"+itemID.String(),
		func(ctx context.Context, _ State) error {
			if err := c.findAlbumItem(ctx, albumID, itemID); err != nil {
				return err
			}
			_, err := c.deps.AlbumItems.UpdateCaption(ctx, itemID, strings.TrimSpace(caption))
			return err
		}, nil)
}

// DeleteAlbumItem removes one item from an album.
func (c *Controller) DeleteAlbumItem(ctx context.Context, s session.Session, albumID, itemID uuid.UUID) (Page, error) {
	return c.mutate(ctx, s, "delete-item:"+itemID.String(),
		func(ctx context.Context, _ State) error {
			if err := c.findAlbumItem(ctx, albumID, itemID); err != nil {
				return err
			}
			return c.deps.AlbumItems.Delete(ctx, itemID)
		}, nil)
}

// Logout forgets the view state of the session together with its draft.
// Files of an entry still being created are removed once it finishes.
func (c *Controller) Logout(ctx context.Context, s session.Session) {
	if s.ID == "" {
		return
	}
	st, ok, err := c.deps.States.Load(ctx, s.ID)
	if err != nil || !ok {
		return
	}
	c.releaseDraft(ctx, s.ID, &st)
	if err := c.deps.States.Save(ctx, s.ID, initialState(c.opts.Birthday)); err != nil {
		c.logger.Warnw("Failed to reset view state", "session_id", s.ID, "error", err)
	}
}

// releaseDraft discards the draft of the session unless a draft action
// holds it. A busy draft stays in st.
func (c *Controller) releaseDraft(ctx context.Context, sessionID string, st *State) {
	if len(st.Draft.Staged) == 0 {
		st.Draft = Draft{}
		return
	}
	release, err := c.deps.Guard.Acquire(ctx, sessionID, draftAction)
	if err != nil {
		c.logger.Infow("Draft in use, keeping staged files", "session_id", sessionID, "error", err)
		return
	}
	defer release()
	c.discardFiles(sessionID)
	st.Draft = Draft{}
}

// dropAbandonedDraft removes the staged files of a failed entry when the
// session no longer refers to them.
func (c *Controller) dropAbandonedDraft(ctx context.Context, sessionID string) {
	st, ok, err := c.deps.States.Load(ctx, sessionID)
	if err != nil {
		c.logger.Warnw("Failed to reload view state", "session_id", sessionID, "error", err)
		return
	}
	if !ok || len(st.Draft.Staged) == 0 {
		c.discardFiles(sessionID)
	}
}

func (c *Controller) discardFiles(sessionID string) {
	if err := c.deps.Uploads.Discard(sessionID); err != nil {
		c.logger.Warnw("Failed to discard draft files", "session_id", sessionID, "error", err)
	}
}
