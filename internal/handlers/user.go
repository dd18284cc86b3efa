package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/services"
	"noticeboard/internal/utils"
)

type UserHandler struct {
	auth          *services.AuthService
	announcements *services.AnnouncementService
}

func NewUserHandler(auth *services.AuthService, announcements *services.AnnouncementService) *UserHandler {
	return &UserHandler{auth: auth, announcements: announcements}
}

// Profile serves a user's public profile with their published announcements.
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.auth.GetUser(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.announcements.List(ctx, services.AnnouncementQuery{
		UserID:   user.ID,
		Page:     utils.StringToInt(c.Query("page")),
		PageSize: utils.StringToInt(c.Query("page_size")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"role":          user.Role,
		"created_at":    user.CreatedAt,
		"announcements": page,
	})
}
