package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cinecore/internal/booking"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	reconciler Reconciler
	secret     string
}

func NewController(reconciler Reconciler, webhookSecret string) *Controller {
	return &Controller{reconciler: reconciler, secret: webhookSecret}
}

// HandleWebhook handles POST /api/v1/payments/webhook
// The provider retries on non-2xx, so anything already settled still
// answers 200.
func (c *Controller) HandleWebhook(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, 1<<20))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read webhook body"})
		return
	}

	if c.secret != "" && !c.verifySignature(body, ctx.GetHeader("X-Webhook-Signature")) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid webhook payload",
			"details": err.Error(),
		})
		return
	}
	if event.OrderID == "" || event.Status == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	b, err := c.reconciler.HandleWebhook(ctx.Request.Context(), event)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown booking"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process webhook",
			"details": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Webhook processed",
		"data": gin.H{
			"booking_id": b.ID.String(),
			"status":     string(b.Status),
		},
	})
}

func (c *Controller) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
