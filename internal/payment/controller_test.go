package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinecore/internal/booking"

	"github.com/gin-gonic/gin"
)

const testWebhookSecret = "whsec_test"

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRouter(bookings *stubBookings, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := NewReconciler(bookings, &stubBookingRepo{bookings: bookings}, NewMockGateway())
	controller := NewController(r, secret)

	engine := gin.New()
	engine.POST("/payments/webhook", controller.HandleWebhook)
	return engine
}

func postWebhook(t *testing.T, engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHandleWebhook_SignedRequest(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)
	engine := webhookRouter(bookings, testWebhookSecret)

	body, _ := json.Marshal(WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})

	w := postWebhook(t, engine, body, sign(body, testWebhookSecret))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if b.Status != booking.StatusCompleted {
		t.Errorf("booking status = %s, want %s", b.Status, booking.StatusCompleted)
	}
}

func TestHandleWebhook_RejectsBadSignature(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)
	engine := webhookRouter(bookings, testWebhookSecret)

	body, _ := json.Marshal(WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})

	tests := []struct {
		name      string
		signature string
	}{
		{"missing signature", ""},
		{"wrong secret", sign(body, "whsec_other")},
		{"garbage signature", "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWebhook(t, engine, body, tt.signature)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}

	if b.Status != booking.StatusAwaitingOnlinePayment {
		t.Errorf("unauthenticated webhooks must not settle the booking, status = %s", b.Status)
	}
}

func TestHandleWebhook_NoSecretSkipsVerification(t *testing.T) {
	bookings := newStubBookings()
	b := awaitingBooking("ref_1")
	bookings.add(b)
	engine := webhookRouter(bookings, "")

	body, _ := json.Marshal(WebhookEvent{
		OrderID:    b.ID.String(),
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})

	w := postWebhook(t, engine, body, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestHandleWebhook_BadPayloads(t *testing.T) {
	bookings := newStubBookings()
	engine := webhookRouter(bookings, testWebhookSecret)

	tests := []struct {
		name string
		body []byte
		want int
	}{
		{"malformed json", []byte("{not json"), http.StatusBadRequest},
		{"missing fields", []byte(`{"reference":"ref_1"}`), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postWebhook(t, engine, tt.body, sign(tt.body, testWebhookSecret))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandleWebhook_UnknownBooking(t *testing.T) {
	bookings := newStubBookings()
	engine := webhookRouter(bookings, testWebhookSecret)

	body, _ := json.Marshal(WebhookEvent{
		OrderID:    "3b24f6e0-92a4-4c53-a2b8-9d8f84dd1c01",
		GatewayRef: "ref_1",
		Status:     string(StatusSucceeded),
	})

	w := postWebhook(t, engine, body, sign(body, testWebhookSecret))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
