package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress returns the pipeline state for the authenticated user
// @Summary Get learning pipeline progress
// @Tags progress
// @Produce json
// @Success 200 {object} services.ProgressResponse
// @Failure 401 {object} ErrorResponse
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	// Keep the local profile row fresh for reporting. Failure here must not
	// block the dashboard.
	if user, err := GetUserFromContext(c); err == nil {
		if err := h.progressService.SyncProfile(c.Request.Context(), user); err != nil {
			h.LogError(c, err, "Profile sync failed", "user_id", userID)
		}
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// StartStage marks a stage as opened by the user
// @Summary Start a pipeline stage
// @Tags progress
// @Produce json
// @Param stage_id path string true "Stage ID"
// @Success 200 {object} services.StageActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /progress/{stage_id}/start [post]
func (h *ProgressHandler) StartStage(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stageID := models.StageID(c.Param("stage_id"))
	h.LogRequest(c, "Starting stage", "user_id", userID, "stage_id", stageID)

	resp, err := h.progressService.StartStage(c.Request.Context(), userID, stageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CompleteStage marks a stage as finished by the user
// @Summary Complete a pipeline stage
// @Tags progress
// @Produce json
// @Param stage_id path string true "Stage ID"
// @Success 200 {object} services.StageActionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /progress/{stage_id}/complete [post]
func (h *ProgressHandler) CompleteStage(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	stageID := models.StageID(c.Param("stage_id"))
	h.LogRequest(c, "Completing stage", "user_id", userID, "stage_id", stageID)

	resp, err := h.progressService.CompleteStage(c.Request.Context(), userID, stageID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProgressHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrPrerequisiteMissing):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Stage prerequisites not met",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Not found",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
