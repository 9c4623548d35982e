package payment

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures the gateway-facing routes. The webhook is
// unauthenticated; the signature check in the controller gates it.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	payments := rg.Group("/payments")
	{
		payments.POST("/webhook", controller.HandleWebhook) // POST /api/v1/payments/webhook
	}
}
