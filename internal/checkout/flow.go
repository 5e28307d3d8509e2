// Package checkout drives one checkout attempt: form validation, order
// creation, and the conditional card-payment step, ending in a success or
// failure route. The flow is single-flight; a second Submit while a request
// is in flight is rejected instead of double-charging.
package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"printshop/internal/cards"
	"printshop/internal/models"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"

	// RouteFailed is the generic failure page; success routes are keyed by
	// the created order id.
	RouteFailed = "/checkout/failed"
)

func SuccessRoute(orderID string) string {
	return "/checkout/success/" + orderID
}

var (
	ErrSubmissionInFlight = errors.New("checkout submission already in flight")
	ErrCheckoutFinished   = errors.New("checkout attempt already finished")
)

// CartItem is one configured product the customer intends to buy. Prices are
// deliberately absent: the order placer recomputes them from the catalog.
type CartItem struct {
	ProductID       string                         `json:"productId"`
	Quantity        int                            `json:"quantity"`
	SelectedOptions map[string]string              `json:"selectedOptions,omitempty"`
	CustomOptions   map[string]models.CustomOption `json:"customOptions,omitempty"`
	Notes           string                         `json:"notes,omitempty"`
}

// Submission is everything the checkout form collects.
type Submission struct {
	Items         []CartItem             `json:"items"`
	Address       models.ShippingAddress `json:"address"`
	PaymentMethod string                 `json:"paymentMethod"`
	Card          *cards.CardData        `json:"card,omitempty"`
	AcceptedTerms bool                   `json:"acceptedTerms"`
}

// PlacedOrder identifies the order created before any payment is attempted.
type PlacedOrder struct {
	OrderID     string
	TotalAmount float64
	Currency    string
}

// OrderPlacer persists the order with server-side resolved prices.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, sub Submission) (PlacedOrder, error)
}

// PaymentProcessor runs the card payment for an already-created order.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, orderID string, amount float64, currency string, card cards.CardData) error
}

// Result reports where the attempt ended and what the client should do:
// surface field errors, open the terms dialog, clear the cart, or navigate.
type Result struct {
	State         State             `json:"state"`
	OrderID       string            `json:"orderId,omitempty"`
	Route         string            `json:"route,omitempty"`
	FieldErrors   map[string]string `json:"fieldErrors,omitempty"`
	TermsRequired bool              `json:"termsRequired,omitempty"`
	CartCleared   bool              `json:"cartCleared"`
}

// Flow is one checkout attempt. Construct a fresh Flow per attempt; after a
// terminal state it refuses further submissions.
type Flow struct {
	orders   OrderPlacer
	payments PaymentProcessor

	mu         sync.Mutex
	state      State
	processing bool
}

func NewFlow(orders OrderPlacer, payments PaymentProcessor) *Flow {
	return &Flow{
		orders:   orders,
		payments: payments,
		state:    StateIdle,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(next State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.state.CanTransitionTo(next) {
		// Transitions are driven internally; a miss here is a programming
		// error worth surfacing in logs, not a user-facing failure.
		log.Printf("[CHECKOUT] illegal transition %s -> %s", f.state, next)
		return
	}
	f.state = next
}

// Submit runs the whole attempt: validate → create order → cash confirm or
// card payment → terminal route. The returned error carries the underlying
// cause for logging; Result always says what the client should show.
func (f *Flow) Submit(ctx context.Context, sub Submission) (Result, error) {
	f.mu.Lock()
	if f.processing {
		f.mu.Unlock()
		return Result{State: f.state}, ErrSubmissionInFlight
	}
	if f.state.IsTerminal() {
		f.mu.Unlock()
		return Result{State: f.state}, ErrCheckoutFinished
	}
	f.processing = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.processing = false
		f.mu.Unlock()
	}()

	f.setState(StateValidating)

	if result, ok := f.validate(sub); !ok {
		f.setState(StateIdle)
		return result, nil
	}

	f.setState(StateCreatingOrder)

	placed, err := f.orders.PlaceOrder(ctx, sub)
	if err != nil {
		log.Println("[CHECKOUT] [ERROR] order creation failed:", err)
		f.setState(StateFailed)
		return Result{State: StateFailed, Route: RouteFailed}, err
	}

	if sub.PaymentMethod == PaymentMethodCash {
		f.setState(StateCashConfirmed)
		f.setState(StateCompleted)
		return Result{
			State:       StateCompleted,
			OrderID:     placed.OrderID,
			Route:       SuccessRoute(placed.OrderID),
			CartCleared: true,
		}, nil
	}

	f.setState(StateProcessingPayment)

	err = f.payments.ProcessPayment(ctx, placed.OrderID, placed.TotalAmount, placed.Currency, *sub.Card)
	if err != nil {
		log.Println("[CHECKOUT] [ERROR] payment failed:", err)
		// Cart is kept so the customer can retry; the order stays pending.
		f.setState(StateFailed)
		return Result{
			State:   StateFailed,
			OrderID: placed.OrderID,
			Route:   RouteFailed,
		}, err
	}

	f.setState(StateCompleted)
	return Result{
		State:       StateCompleted,
		OrderID:     placed.OrderID,
		Route:       SuccessRoute(placed.OrderID),
		CartCleared: true,
	}, nil
}

// validate gates the submission: non-empty cart, address fields, terms
// acceptance, and the card fields when paying by card.
func (f *Flow) validate(sub Submission) (Result, bool) {
	fieldErrors := ValidateAddress(sub.Address)

	if len(sub.Items) == 0 {
		fieldErrors["items"] = "سلة المشتريات فارغة"
	}

	switch sub.PaymentMethod {
	case PaymentMethodCash:
	case PaymentMethodCard:
		if sub.Card == nil {
			fieldErrors["card"] = "بيانات البطاقة مطلوبة"
		} else {
			cardErrors, ok := cards.ValidateCreditCard(*sub.Card)
			if !ok {
				for field, message := range cardErrors {
					fieldErrors[field] = message
				}
			}
		}
	default:
		fieldErrors["paymentMethod"] = "طريقة الدفع غير صالحة"
	}

	if !sub.AcceptedTerms {
		return Result{
			State:         StateIdle,
			FieldErrors:   fieldErrors,
			TermsRequired: true,
		}, false
	}

	if len(fieldErrors) > 0 {
		return Result{State: StateIdle, FieldErrors: fieldErrors}, false
	}

	return Result{}, true
}
