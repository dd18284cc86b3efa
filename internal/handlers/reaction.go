package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/services"
)

type ReactionHandler struct {
	reactions *services.ReactionService
}

func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

func (h *ReactionHandler) Like(c *gin.Context) {
	h.toggle(c, h.reactions.ToggleLike)
}

func (h *ReactionHandler) Dislike(c *gin.Context) {
	h.toggle(c, h.reactions.ToggleDislike)
}

func (h *ReactionHandler) toggle(c *gin.Context, fn func(ctx context.Context, announcementID, userID uint) (bool, error)) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	active, err := fn(ctx, id, actor(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := h.reactions.Counts(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":   active,
		"likes":    counts.Likes,
		"dislikes": counts.Dislikes,
	})
}
