package booking

import (
	"cinecore/internal/layout"
	"cinecore/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the seatlabel binding rule used by the
// booking DTOs. Call once before routes are mounted.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("seatlabel", func(fl validator.FieldLevel) bool {
			_, err := layout.ParseSeatLabel(fl.Field().String())
			return err == nil
		})
	}
}

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "STAFF", "ADMIN"))
	{
		bookings.POST("", controller.CreateBooking)            // POST /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)            // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	// Counter operations: cash settlement and back-office listing.
	admin := rg.Group("/admin/bookings")
	admin.Use(middleware.JWTAuth(), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		admin.GET("", controller.ListBookings)                           // GET /api/v1/admin/bookings
		admin.POST("/:id/confirm-payment", controller.ConfirmPayment)    // POST /api/v1/admin/bookings/:id/confirm-payment
		admin.POST("/:id/reject-payment", controller.RejectPayment)      // POST /api/v1/admin/bookings/:id/reject-payment
	}
}
