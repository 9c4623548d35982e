package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatewayServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/payment-links", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload createLinkPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "VND", payload.Currency)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(linkPayload{
			Reference:  "ref_" + payload.OrderID,
			PaymentURL: "https://provider.example.com/pay/" + payload.OrderID,
			Status:     string(StatusPending),
		})
	})

	mux.HandleFunc("/v1/payment-links/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch strings.TrimPrefix(r.URL.Path, "/v1/payment-links/") {
		case "ref_paid":
			json.NewEncoder(w).Encode(linkPayload{Reference: "ref_paid", Status: string(StatusSucceeded)})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPGateway_CreateLink(t *testing.T) {
	server := newGatewayServer(t)
	gateway := NewHTTPGateway(GatewayConfig{
		BaseURL: server.URL,
		APIKey:  "sk_test",
		Timeout: time.Second,
	})

	resp, err := gateway.CreateLink(context.Background(), &CreateLinkRequest{
		OrderID:    "order-1",
		Amount:     90000,
		Currency:   "VND",
		SuccessURL: "https://cinecore.example.com/success",
		CancelURL:  "https://cinecore.example.com/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "ref_order-1", resp.GatewayRef)
	assert.Equal(t, "https://provider.example.com/pay/order-1", resp.PaymentURL)
	assert.Equal(t, StatusPending, resp.Status)
}

func TestHTTPGateway_CreateLink_BadCredentials(t *testing.T) {
	server := newGatewayServer(t)
	gateway := NewHTTPGateway(GatewayConfig{BaseURL: server.URL, APIKey: "sk_wrong", Timeout: time.Second})

	_, err := gateway.CreateLink(context.Background(), &CreateLinkRequest{OrderID: "order-1", Amount: 90000})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestHTTPGateway_GetStatus(t *testing.T) {
	server := newGatewayServer(t)
	gateway := NewHTTPGateway(GatewayConfig{BaseURL: server.URL, APIKey: "sk_test", Timeout: time.Second})
	ctx := context.Background()

	status, err := gateway.GetStatus(ctx, "ref_paid")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, status)

	_, err = gateway.GetStatus(ctx, "ref_missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	gateway := NewHTTPGateway(GatewayConfig{BaseURL: "http://127.0.0.1:1", APIKey: "sk_test", Timeout: 200 * time.Millisecond})

	_, err := gateway.GetStatus(context.Background(), "ref_any")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
