package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// List serves the top-level comments of an announcement.
func (h *CommentHandler) List(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.ListTopLevel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": comments})
}

func (h *CommentHandler) Replies(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	replies, err := h.comments.ListReplies(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": replies})
}

func (h *CommentHandler) Create(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), actor(c), id, req.ParentID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), actor(c), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
