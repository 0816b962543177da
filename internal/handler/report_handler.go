package handler

import (
	"net/http"
	"strings"

	"memora/internal/commands"
	"memora/internal/domain/report"
	"memora/internal/services"
	"memora/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req httpdto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	resourceID, err := parseUUID(req.ResourceID)
	if err != nil {
		badRequest(c, "invalid resource_id")
		return
	}
	actor, ok := requireIdentity(c)
	if !ok {
		return
	}

	rep, err := h.reports.Create(c.Request.Context(), commands.CreateReportCommand{
		Actor:        actor,
		ResourceType: report.ResourceType(strings.ToUpper(req.ResourceType)),
		ResourceID:   resourceID,
		Reason:       req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromReport(rep)))
}

// List serves GET /api/reports?resource_type=&resource_id=
func (h *ReportHandler) List(c *gin.Context) {
	t := report.ResourceType(strings.ToUpper(c.Query("resource_type")))
	if !t.Valid() {
		badRequest(c, "resource_type must be PROMPT or RESPONSE")
		return
	}
	resourceID, err := parseUUID(c.Query("resource_id"))
	if err != nil {
		badRequest(c, "invalid resource_id")
		return
	}

	reports, err := h.reports.ForResource(c.Request.Context(), t, resourceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"reports": httpdto.FromReportSlice(reports)}))
}
