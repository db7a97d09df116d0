package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusehat/education-service/internal/config"
	"github.com/edusehat/education-service/internal/utils"
	"github.com/edusehat/education-service/internal/validator"
)

// adminTokenHeader carries the admin panel session token
const adminTokenHeader = "X-Admin-Token"

// adminToken is the literal session token issued by Login. The admin panel is
// a single fixed account, there is no per-session state to track.
const adminToken = "true"

// AdminAuth implements the fixed-credential admin panel login and the token
// check applied to all admin routes.
type AdminAuth struct {
	BaseHandler
	cfg       config.AdminConfig
	validator *validator.Validator
}

func NewAdminAuth(cfg config.AdminConfig, v *validator.Validator, logger utils.Logger) *AdminAuth {
	return &AdminAuth{
		BaseHandler: NewBaseHandler(logger),
		cfg:         cfg,
		validator:   v,
	}
}

// Login checks the configured admin credentials and issues the admin token
// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body validator.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /admin/login [post]
func (a *AdminAuth) Login(c *gin.Context) {
	var req validator.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if errs := a.validator.Validate(&req); errs.HasErrors() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: errs.Error(),
		})
		return
	}

	if req.Email != a.cfg.Email || req.Password != a.cfg.Password {
		a.LogRequest(c, "Admin login rejected", "email", req.Email)
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
		return
	}

	a.LogRequest(c, "Admin logged in")
	c.JSON(http.StatusOK, gin.H{"token": adminToken})
}

// Middleware rejects admin requests without a valid admin token
func (a *AdminAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(adminTokenHeader) != adminToken {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Admin authentication required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
