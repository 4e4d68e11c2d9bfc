package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/egov-portal-api/internal/service"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/response"
)

// ReportHandler handles dashboard and export endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Dashboard godoc
// @Summary Dashboard
// @Description Aggregate figures for the caller's scope
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	report, err := h.service.Dashboard(c.Request.Context(), sub)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "", report)
}

// ExportRequests godoc
// @Summary Export requests
// @Description Export the caller's visible requests as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Status filter"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/requests/export [get]
func (h *ReportHandler) ExportRequests(c *gin.Context) {
	sub, ok := subjectFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	filter := requestFilterFromQuery(c)

	out, contentType, err := h.service.ExportRequests(c.Request.Context(), sub, format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("requests-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, out)
}
