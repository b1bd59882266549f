package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/middleware"
	"io.winapps.babytracker/internal/session"
	"io.winapps.babytracker/internal/uploader"
	"io.winapps.babytracker/internal/view"
)

// Views is the view controller as used by the HTTP layer.
type Views interface {
	Render(ctx context.Context, s session.Session) (view.Page, error)
	SwitchTab(ctx context.Context, s session.Session, tab view.Tab) (view.Page, error)
	SetFilter(ctx context.Context, s session.Session, filter string) (view.Page, error)
	SetBirthday(ctx context.Context, s session.Session, date string) (view.Page, error)
	OpenAlbum(ctx context.Context, s session.Session, albumID uuid.UUID) (view.Page, error)
	CloseAlbum(ctx context.Context, s session.Session) (view.Page, error)
	StageFiles(ctx context.Context, s session.Session, incoming []uploader.Incoming) (view.Page, error)
	RemoveStaged(ctx context.Context, s session.Session, index int) (view.Page, error)
	OpenStaged(ctx context.Context, s session.Session, index int) (uploader.StagedFile, io.ReadSeekCloser, error)
	CreateEntry(ctx context.Context, s session.Session, in view.EntryInput) (view.Page, error)
	Like(ctx context.Context, s session.Session, id uuid.UUID) (view.Page, error)
	EditTitle(ctx context.Context, s session.Session, id uuid.UUID, title string) (view.Page, error)
	DeleteEntry(ctx context.Context, s session.Session, id uuid.UUID) (view.Page, error)
	Comments(ctx context.Context, s session.Session, milestoneID uuid.UUID) ([]domain.Comment, error)
	AddComment(ctx context.Context, s session.Session, milestoneID uuid.UUID, content, author string) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, s session.Session, milestoneID, commentID uuid.UUID) ([]domain.Comment, error)
	CreateAlbum(ctx context.Context, s session.Session, name, description string) (view.Page, error)
	UpdateAlbum(ctx context.Context, s session.Session, id uuid.UUID, patch domain.AlbumPatch) (view.Page, error)
	DeleteAlbum(ctx context.Context, s session.Session, id uuid.UUID) (view.Page, error)
	AddAlbumItemsFromEntry(ctx context.Context, s session.Session, albumID, milestoneID uuid.UUID, caption string) (view.Page, error)
	AddAlbumItemsFromUpload(ctx context.Context, s session.Session, albumID uuid.UUID, incoming []uploader.Incoming, caption string) (view.Page, error)
	EditAlbumItemCaption(ctx context.Context, s session.Session, albumID, itemID uuid.UUID, caption string) (view.Page, error)
	DeleteAlbumItem(ctx context.Context, s session.Session, albumID, itemID uuid.UUID) (view.Page, error)
}

type ViewHandler struct {
	views      Views
	maxRequest int64
	logger     *zap.SugaredLogger
}

// NewViewHandler creates a new view handler. maxRequest bounds multipart bodies.
func NewViewHandler(views Views, maxRequest int64, logger *zap.SugaredLogger) *ViewHandler {
	return &ViewHandler{
		views:      views,
		maxRequest: maxRequest,
		logger:     logger,
	}
}

// GetView renders the current page of the session
func (h *ViewHandler) GetView(c *gin.Context) {
	page, err := h.views.Render(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		h.logError(c, err, "Failed to render view")
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, page)
}
