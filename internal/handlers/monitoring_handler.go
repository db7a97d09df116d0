package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
)

type MonitoringHandler struct {
	BaseHandler
	monitoringService services.MonitoringService
}

func NewMonitoringHandler(monitoringService services.MonitoringService, logger utils.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		BaseHandler:       NewBaseHandler(logger),
		monitoringService: monitoringService,
	}
}

// SubmitMonitoring stores a questionnaire submission for an education stage
// @Summary Submit monitoring questionnaire
// @Tags monitoring
// @Accept json
// @Produce json
// @Param submission body services.MonitoringSubmitRequest true "Questionnaire answers"
// @Success 201 {object} models.MonitoringResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /monitoring [post]
func (h *MonitoringHandler) SubmitMonitoring(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.MonitoringSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.monitoringService.SubmitMonitoring(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// SubmitCommitment stores the commitment confirmation from education-3
// @Summary Submit commitment confirmation
// @Tags monitoring
// @Accept json
// @Produce json
// @Param commitment body services.CommitmentSubmitRequest true "Commitment status"
// @Success 201 {object} models.CommitmentRecord
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /commitments [post]
func (h *MonitoringHandler) SubmitCommitment(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req services.CommitmentSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	record, err := h.monitoringService.SubmitCommitment(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListMine returns the authenticated user's monitoring submissions
// @Summary List own monitoring submissions
// @Tags monitoring
// @Produce json
// @Success 200 {object} services.MonitoringListResponse
// @Failure 401 {object} ErrorResponse
// @Router /monitoring [get]
func (h *MonitoringHandler) ListMine(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	resp, err := h.monitoringService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MonitoringHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrStageLocked):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Stage is locked",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
