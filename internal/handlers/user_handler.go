package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
}

func NewUserHandler(logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
	}
}

// GetMe returns the authenticated user's identity
// @Summary Get own profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	// The auth middleware already resolved the user through the cached
	// Casdoor repository.
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	c.JSON(http.StatusOK, user)
}
