package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard/internal/models"
	"noticeboard/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	TargetType models.TargetType `json:"target_type"`
	TargetID   uint              `json:"target_id"`
	Reason     string            `json:"reason"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !req.TargetType.Valid() || req.TargetID == 0 {
		badRequest(c, "target_type and target_id are required")
		return
	}

	target := models.Target{Kind: req.TargetType, ID: req.TargetID}
	report, err := h.reports.ReportTarget(c.Request.Context(), actor(c).UserID, target, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Mine lists the reports filed by the current user.
func (h *ReportHandler) Mine(c *gin.Context) {
	reports, err := h.reports.ListByReporter(c.Request.Context(), actor(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reports})
}
