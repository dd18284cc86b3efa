package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/models"
	"noticeboard/internal/services"
	"noticeboard/internal/utils"
)

type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

func NewAnnouncementHandler(announcements *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// List serves GET /announcements?location=&category_id=&status=&page=&page_size=
func (h *AnnouncementHandler) List(c *gin.Context) {
	query := services.AnnouncementQuery{
		Location: c.Query("location"),
		Status:   models.AnnouncementStatus(c.Query("status")),
		Page:     utils.StringToInt(c.Query("page")),
		PageSize: utils.StringToInt(c.Query("page_size")),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			badRequest(c, "invalid category_id")
			return
		}
		query.CategoryID = id
	}

	page, err := h.announcements.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	announcement, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var input services.AnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	announcement, err := h.announcements.Create(c.Request.Context(), actor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.AnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	announcement, err := h.announcements.Update(c.Request.Context(), actor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
