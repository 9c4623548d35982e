package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpGateway talks to a REST payment-link provider.
type httpGateway struct {
	config GatewayConfig
	client *http.Client
}

func NewHTTPGateway(config GatewayConfig) Gateway {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpGateway{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *httpGateway) Name() string {
	return "http"
}

type createLinkPayload struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	SuccessURL  string  `json:"success_url"`
	CancelURL   string  `json:"cancel_url"`
}

type linkPayload struct {
	Reference  string `json:"reference"`
	PaymentURL string `json:"payment_url"`
	Status     string `json:"status"`
}

func (g *httpGateway) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	payload := createLinkPayload{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment link request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/v1/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment link request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create link returned status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var link linkPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode payment link response: %w", err)
	}

	return &CreateLinkResponse{
		GatewayRef: link.Reference,
		PaymentURL: link.PaymentURL,
		Status:     Status(link.Status),
	}, nil
}

func (g *httpGateway) GetStatus(ctx context.Context, gatewayRef string) (Status, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+"/v1/payment-links/"+gatewayRef, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrTransactionNotFound, gatewayRef)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status query returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var link linkPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&link); err != nil {
		return "", fmt.Errorf("failed to decode status response: %w", err)
	}
	return Status(link.Status), nil
}
