// Package gateway isolates the payment provider behind a single interface so
// the transaction bookkeeping in the payment handler never depends on which
// provider settles the charge.
package gateway

import (
	"context"
	"fmt"
)

// ChargeRequest carries what the provider needs to settle one payment.
type ChargeRequest struct {
	Amount         float64
	Currency       string
	CardNumber     string
	CardholderName string
}

// ChargeResult is returned on a successful charge.
type ChargeResult struct {
	TransactionID string
}

// DeclineError is a provider-side refusal (bad card, insufficient funds).
// Any other error from Charge is a transport or provider outage.
type DeclineError struct {
	Reason string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// PaymentGateway is implemented by the mock in this repository and by any
// real provider integration. A real provider must take a card token here,
// never the raw number.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
