package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"printshop/internal/cards"
)

// Fixed test hooks: a card number starting with 0000 is always declined, and
// an amount of exactly 999.99 fails regardless of card, so the failure path
// can be exercised end to end without a real provider.
const (
	declinePrefix = "0000"
	declineAmount = 999.99
)

// MockGateway simulates a card processor. Every charge succeeds after a short
// delay unless it hits one of the fixed decline hooks.
type MockGateway struct {
	// Delay approximates provider latency; zero means no wait.
	Delay time.Duration
}

func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{Delay: delay}
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	number := cards.CleanNumber(req.CardNumber)

	if strings.HasPrefix(number, declinePrefix) {
		return ChargeResult{}, &DeclineError{Reason: "رقم البطاقة غير صالح"}
	}
	if req.Amount == declineAmount {
		return ChargeResult{}, &DeclineError{Reason: "تم رفض العملية من جهة المصدر"}
	}

	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return ChargeResult{}, ctx.Err()
		}
	}

	return ChargeResult{TransactionID: "TXN-" + uuid.NewString()}, nil
}
