package payment

import (
	"context"
	"fmt"

	"cinecore/internal/booking"
)

// bookingGatewayAdapter exposes a Gateway through the narrow interface the
// booking lifecycle consumes, avoiding a circular dependency.
type bookingGatewayAdapter struct {
	gateway  Gateway
	currency string
}

func NewBookingGatewayAdapter(gateway Gateway, currency string) booking.PaymentGateway {
	if currency == "" {
		currency = "VND"
	}
	return &bookingGatewayAdapter{gateway: gateway, currency: currency}
}

func (a *bookingGatewayAdapter) CreateLink(ctx context.Context, bookingID string, amount float64, successURL, cancelURL string) (*booking.PaymentLink, error) {
	resp, err := a.gateway.CreateLink(ctx, &CreateLinkRequest{
		OrderID:     bookingID,
		Amount:      amount,
		Currency:    a.currency,
		Description: fmt.Sprintf("Cinema booking %s", bookingID),
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		return nil, err
	}
	return &booking.PaymentLink{
		PaymentURL: resp.PaymentURL,
		GatewayRef: resp.GatewayRef,
	}, nil
}
