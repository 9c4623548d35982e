package checkin

import (
	"cinecore/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCheckinRoutes configures the door-scanner routes
func SetupCheckinRoutes(rg *gin.RouterGroup, controller *Controller) {
	checkin := rg.Group("/checkin")
	checkin.Use(middleware.JWTAuth(), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		checkin.POST("", controller.ValidateTicket) // POST /api/v1/checkin
	}
}
