package catalog

import (
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes configures the public browse routes. No auth: seat maps
// and showtime details are visible before login.
func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {
	showtimes := rg.Group("/showtimes")
	{
		showtimes.GET("/:id", controller.GetShowtime)       // GET /api/v1/showtimes/:id
		showtimes.GET("/:id/seats", controller.GetSeatMap)  // GET /api/v1/showtimes/:id/seats
	}
}
