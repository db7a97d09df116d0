package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
)

type ExpertHandler struct {
	BaseHandler
	expertService services.ExpertService
}

func NewExpertHandler(expertService services.ExpertService, logger utils.Logger) *ExpertHandler {
	return &ExpertHandler{
		BaseHandler:   NewBaseHandler(logger),
		expertService: expertService,
	}
}

// ListExperts returns the expert directory shown on the tanya-ahli stage
// @Summary List experts
// @Tags experts
// @Produce json
// @Success 200 {array} models.Expert
// @Router /experts [get]
func (h *ExpertHandler) ListExperts(c *gin.Context) {
	experts, err := h.expertService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, experts)
}

// GetExpert returns a single expert
// @Summary Get expert
// @Tags experts
// @Produce json
// @Param id path uint true "Expert ID"
// @Success 200 {object} models.Expert
// @Failure 404 {object} ErrorResponse
// @Router /experts/{id} [get]
func (h *ExpertHandler) GetExpert(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	expert, err := h.expertService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, expert)
}

// CreateExpert adds an expert to the directory
// @Summary Create expert
// @Tags admin
// @Accept json
// @Produce json
// @Param expert body services.ExpertCreateRequest true "Expert data"
// @Success 201 {object} models.Expert
// @Failure 400 {object} ErrorResponse
// @Router /admin/experts [post]
func (h *ExpertHandler) CreateExpert(c *gin.Context) {
	var req services.ExpertCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating expert", "name", req.Name)

	expert, err := h.expertService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, expert)
}

// UpdateExpert applies a partial update to an expert
// @Summary Update expert
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Expert ID"
// @Param expert body services.ExpertUpdateRequest true "Fields to update"
// @Success 200 {object} models.Expert
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/experts/{id} [put]
func (h *ExpertHandler) UpdateExpert(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ExpertUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	expert, err := h.expertService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, expert)
}

// DeleteExpert removes an expert from the directory
// @Summary Delete expert
// @Tags admin
// @Produce json
// @Param id path uint true "Expert ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/experts/{id} [delete]
func (h *ExpertHandler) DeleteExpert(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.expertService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Expert deleted"})
}

func (h *ExpertHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid ID parameter",
			Details: "ID must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

func (h *ExpertHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Expert not found",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
