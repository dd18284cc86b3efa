package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/models"
	"noticeboard/internal/services"
	"noticeboard/internal/utils"
)

type AdminHandler struct {
	reports    *services.ReportService
	moderation *services.ModerationService
}

func NewAdminHandler(reports *services.ReportService, moderation *services.ModerationService) *AdminHandler {
	return &AdminHandler{reports: reports, moderation: moderation}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type statusRequest struct {
	Status models.ReportStatus `json:"status"`
}

type contentRequest struct {
	Content string `json:"content"`
}

// Reports lists reports by status, open by default.
func (h *AdminHandler) Reports(c *gin.Context) {
	status := models.ReportStatus(c.DefaultQuery("status", string(models.ReportOpen)))
	reports, err := h.reports.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reports})
}

// TargetReports lists every report and moderation action for one target.
func (h *AdminHandler) TargetReports(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	target := models.Target{Kind: models.TargetType(c.Param("type")), ID: id}
	ctx := c.Request.Context()

	reports, err := h.reports.ListForTarget(ctx, target)
	if err != nil {
		respondError(c, err)
		return
	}
	actions, err := h.moderation.ActionsForTarget(ctx, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "actions": actions})
}

func (h *AdminHandler) UpdateReportStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	updated, err := h.moderation.UpdateReportStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *AdminHandler) RemoveComment(c *gin.Context) {
	h.remove(c, h.moderation.RemoveReportedComment)
}

func (h *AdminHandler) RemoveAnnouncement(c *gin.Context) {
	h.remove(c, h.moderation.RemoveReportedAnnouncement)
}

func (h *AdminHandler) remove(c *gin.Context, fn func(context.Context, models.Actor, uint, string) (bool, error)) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	removed, err := fn(c.Request.Context(), actor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *AdminHandler) EditComment(c *gin.Context) {
	h.edit(c, h.moderation.EditReportedComment)
}

func (h *AdminHandler) EditAnnouncement(c *gin.Context) {
	h.edit(c, h.moderation.EditReportedAnnouncement)
}

func (h *AdminHandler) edit(c *gin.Context, fn func(context.Context, models.Actor, uint, string) error) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := fn(c.Request.Context(), actor(c), id, req.Content); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) BlockUser(c *gin.Context) {
	h.userReasonAction(c, h.moderation.BlockUser)
}

func (h *AdminHandler) UnblockUser(c *gin.Context) {
	h.userReasonAction(c, h.moderation.UnblockUser)
}

func (h *AdminHandler) userReasonAction(c *gin.Context, fn func(context.Context, models.Actor, uint, string) error) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reasonRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	if err := fn(c.Request.Context(), actor(c), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) PromoteUser(c *gin.Context) {
	h.roleAction(c, h.moderation.PromoteUser)
}

func (h *AdminHandler) DemoteUser(c *gin.Context) {
	h.roleAction(c, h.moderation.DemoteUser)
}

func (h *AdminHandler) roleAction(c *gin.Context, fn func(context.Context, models.Actor, uint) error) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Actions serves the moderation log.
func (h *AdminHandler) Actions(c *gin.Context) {
	actions, err := h.moderation.ListActions(c.Request.Context(), utils.StringToInt(c.Query("limit")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": actions})
}
