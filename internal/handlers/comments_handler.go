package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/middleware"
	models "io.winapps.babytracker/internal/models/comments"
)

func toCommentsResponse(comments []domain.Comment) models.CommentsResponse {
	resp := models.CommentsResponse{Comments: make([]models.Comment, 0, len(comments))}
	for _, cm := range comments {
		resp.Comments = append(resp.Comments, models.Comment{
			ID:         cm.ID,
			CreatedAt:  cm.CreatedAt,
			EntryID:    cm.MilestoneID,
			Content:    cm.Content,
			AuthorName: cm.AuthorName,
		})
	}
	return resp
}

// ListComments returns the comments of a milestone, oldest first
func (h *EntryHandler) ListComments(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionLoad)
		return
	}

	comments, err := h.views.Comments(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		h.logError(c, err, "Failed to list comments", "entry_id", id)
		respondError(c, err, actionLoad)
		return
	}
	c.JSON(http.StatusOK, toCommentsResponse(comments))
}

// AddComment appends a comment and returns the refreshed list
func (h *EntryHandler) AddComment(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	comments, err := h.views.AddComment(c.Request.Context(), middleware.CurrentSession(c), id, req.Content, req.AuthorName)
	if err != nil {
		h.logError(c, err, "Failed to add comment", "entry_id", id)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusCreated, toCommentsResponse(comments))
}

// DeleteComment removes a comment and returns the refreshed list
func (h *EntryHandler) DeleteComment(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}
	commentID, err := uuidParam(c, "commentId")
	if err != nil {
		respondError(c, err, actionSave)
		return
	}

	comments, err := h.views.DeleteComment(c.Request.Context(), middleware.CurrentSession(c), id, commentID)
	if err != nil {
		h.logError(c, err, "Failed to delete comment", "entry_id", id, "comment_id", commentID)
		respondError(c, err, actionSave)
		return
	}
	c.JSON(http.StatusOK, toCommentsResponse(comments))
}
