package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridsight/gridsight-backend/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// POST /api/inspections/:id/comments
func (h *CommentHandler) Add(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := h.commentService.Add(c.Request.Context(), inspectionID, req.Text, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, comment)
}

// GET /api/inspections/:id/comments
func (h *CommentHandler) GetByInspection(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.commentService.GetByInspection(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"comments": rows})
}

// PUT /api/comments/:commentId
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), commentID, req.Text)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, comment)
}

// DELETE /api/comments/:commentId
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := pathUUID(c, "commentId")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), commentID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
