package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// mockGateway is an in-memory provider for local development and tests.
// Links start PENDING; MarkPaid and MarkFailed drive them from test code or
// the simulator endpoints.
type mockGateway struct {
	mu    sync.Mutex
	links map[string]Status
}

func NewMockGateway() *mockGateway {
	return &mockGateway{links: make(map[string]Status)}
}

func (g *mockGateway) Name() string {
	return "mock"
}

func (g *mockGateway) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	ref := "mock_" + uuid.New().String()

	g.mu.Lock()
	g.links[ref] = StatusPending
	g.mu.Unlock()

	return &CreateLinkResponse{
		GatewayRef: ref,
		PaymentURL: "https://pay.example.com/checkout/" + ref,
		Status:     StatusPending,
	}, nil
}

func (g *mockGateway) GetStatus(ctx context.Context, gatewayRef string) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	status, ok := g.links[gatewayRef]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTransactionNotFound, gatewayRef)
	}
	return status, nil
}

func (g *mockGateway) MarkPaid(gatewayRef string) {
	g.mu.Lock()
	g.links[gatewayRef] = StatusSucceeded
	g.mu.Unlock()
}

func (g *mockGateway) MarkFailed(gatewayRef string) {
	g.mu.Lock()
	g.links[gatewayRef] = StatusFailed
	g.mu.Unlock()
}
