package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/services"
)

type CategoryHandler struct {
	announcements *services.AnnouncementService
}

func NewCategoryHandler(announcements *services.AnnouncementService) *CategoryHandler {
	return &CategoryHandler{announcements: announcements}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.announcements.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": categories})
}
