package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// GetStats returns the admin dashboard aggregates
// @Summary Get completion statistics
// @Tags admin
// @Produce json
// @Success 200 {object} services.ReportStatsResponse
// @Router /admin/reports/stats [get]
func (h *ReportHandler) GetStats(c *gin.Context) {
	stats, err := h.reportService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCompletionReport returns a per-stage completion report as JSON
// @Summary Get completion report
// @Tags admin
// @Produce json
// @Param name path string true "Report name (stage ID)"
// @Success 200 {object} services.CompletionReportResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/reports/{name} [get]
func (h *ReportHandler) GetCompletionReport(c *gin.Context) {
	name := c.Param("name")

	report, err := h.reportService.CompletionReport(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportCompletionReport streams a completion report as a CSV or XLSX download
// @Summary Export completion report
// @Tags admin
// @Produce text/csv
// @Param name path string true "Report name (stage ID)"
// @Param format query string false "Export format: csv or xlsx (default: csv)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/reports/{name}/export [get]
func (h *ReportHandler) ExportCompletionReport(c *gin.Context) {
	name := c.Param("name")
	format := c.DefaultQuery("format", "csv")

	h.LogRequest(c, "Exporting completion report", "report", name, "format", format)

	result, err := h.reportService.ExportCompletionReport(c.Request.Context(), name, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// GetMonitoringReport lists monitoring submissions with optional filters
// @Summary Get monitoring report
// @Tags admin
// @Produce json
// @Param user_id query string false "Filter by user"
// @Param education_stage query string false "Filter by education stage"
// @Success 200 {object} services.MonitoringReportResponse
// @Router /admin/reports/monitoring [get]
func (h *ReportHandler) GetMonitoringReport(c *gin.Context) {
	filters := repositories.MonitoringFilters{
		Limit:  h.parseQueryInt(c, "limit", 100),
		Offset: h.parseQueryInt(c, "offset", 0),
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if stage := c.Query("education_stage"); stage != "" {
		stageID := models.StageID(stage)
		if !models.IsEducationStage(stageID) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid education_stage parameter",
			})
			return
		}
		filters.EducationStage = &stageID
	}
	if from, ok := h.parseQueryDate(c, "date_from"); ok {
		filters.DateFrom = from
	}
	if to, ok := h.parseQueryDate(c, "date_to"); ok {
		filters.DateTo = to
	}

	resp, err := h.reportService.MonitoringReport(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetCommitmentReport lists commitment records with optional filters
// @Summary Get commitment report
// @Tags admin
// @Produce json
// @Param user_id query string false "Filter by user"
// @Param status query bool false "Filter by commitment status"
// @Success 200 {object} services.CommitmentReportResponse
// @Router /admin/reports/commitments [get]
func (h *ReportHandler) GetCommitmentReport(c *gin.Context) {
	filters := repositories.CommitmentFilters{
		Limit:  h.parseQueryInt(c, "limit", 100),
		Offset: h.parseQueryInt(c, "offset", 0),
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := strconv.ParseBool(statusStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid status parameter",
				Details: "status must be true or false",
			})
			return
		}
		filters.Status = &status
	}
	if from, ok := h.parseQueryDate(c, "date_from"); ok {
		filters.DateFrom = from
	}
	if to, ok := h.parseQueryDate(c, "date_to"); ok {
		filters.DateTo = to
	}

	resp, err := h.reportService.CommitmentReport(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) parseQueryInt(c *gin.Context, param string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(param, strconv.Itoa(fallback)))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func (h *ReportHandler) parseQueryDate(c *gin.Context, param string) (*time.Time, bool) {
	raw := c.Query(param)
	if raw == "" {
		return nil, false
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func (h *ReportHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Report not found",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
