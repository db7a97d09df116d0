package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/services"
	"github.com/edusehat/education-service/internal/utils"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

// TriggerSweep runs the notification sweep on demand. The same sweep also
// runs on the scheduler, this endpoint exists for the admin panel.
// @Summary Trigger notification sweep
// @Tags admin
// @Produce json
// @Success 200 {object} services.SweepResult
// @Router /admin/notifications/sweep [post]
func (h *NotificationHandler) TriggerSweep(c *gin.Context) {
	h.LogRequest(c, "Manual notification sweep requested")

	result, err := h.notificationService.Sweep(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Notification sweep failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Notification sweep failed",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
