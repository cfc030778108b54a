package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/google/uuid"
)

// PaymentProvider charges and refunds money on behalf of the gate.
type PaymentProvider interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	Refund(ctx context.Context, externalRef string) error
}

type ChargeRequest struct {
	PaymentID int64
	StudentID int64
	Amount    int64
	Currency  string
}

type ChargeResult struct {
	ExternalRef string
}

// MockProvider approves every charge.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}
	return ChargeResult{ExternalRef: "mock_" + uuid.NewString()}, nil
}

func (p *MockProvider) Refund(ctx context.Context, externalRef string) error {
	if !strings.HasPrefix(externalRef, "mock_") {
		return fmt.Errorf("unknown charge reference %q", externalRef)
	}
	return ctx.Err()
}

// FailingProvider declines every charge with Reason.
type FailingProvider struct {
	Reason string
}

func NewFailingProvider(reason string) *FailingProvider {
	if reason == "" {
		reason = "card declined"
	}
	return &FailingProvider{Reason: reason}
}

func (p *FailingProvider) Name() string { return "failing" }

func (p *FailingProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	return ChargeResult{}, fmt.Errorf("%w: %s", entity.ErrPaymentDeclined, p.Reason)
}

func (p *FailingProvider) Refund(ctx context.Context, externalRef string) error {
	return errors.New("failing provider holds no charges")
}

// NewPaymentProvider picks the strategy named in config.
func NewPaymentProvider(name string) (PaymentProvider, error) {
	switch name {
	case "", "mock":
		return NewMockProvider(), nil
	case "failing":
		return NewFailingProvider(""), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", name)
}
