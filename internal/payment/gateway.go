package payment

import (
	"context"
	"errors"
	"time"
)

// Status is the gateway-side state of a payment link.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether the gateway will never change this status again.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCancelled
}

var (
	// ErrGatewayUnavailable wraps transport failures talking to the provider.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrTransactionNotFound is returned when the provider does not know the reference.
	ErrTransactionNotFound = errors.New("payment transaction not found")
)

// Gateway defines the interface for the payment-link provider.
type Gateway interface {
	// CreateLink registers a pending payment and returns a checkout URL.
	CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error)

	// GetStatus retrieves the current state of a payment by provider reference.
	GetStatus(ctx context.Context, gatewayRef string) (Status, error)

	// Name returns the gateway name
	Name() string
}

// CreateLinkRequest represents a payment-link creation request
type CreateLinkRequest struct {
	OrderID     string
	Amount      float64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CreateLinkResponse represents a payment-link creation response
type CreateLinkResponse struct {
	GatewayRef string
	PaymentURL string
	Status     Status
}

// GatewayConfig holds common gateway configuration
type GatewayConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	Timeout       time.Duration
}
