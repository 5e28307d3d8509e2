package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of a placed order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusInProcess OrderStatus = "processing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderStatusRank orders the forward chain pending → delivered. Cancellation
// is allowed from any non-terminal state.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusInProcess: 2,
	OrderStatusReady:     3,
	OrderStatusShipped:   4,
	OrderStatusDelivered: 5,
}

func (s OrderStatus) IsValid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStatusRank[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows only forward movement along the chain, plus
// cancellation from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	from, okFrom := orderStatusRank[s]
	to, okTo := orderStatusRank[next]
	return okFrom && okTo && to > from
}

func (s OrderStatus) String() string {
	return string(s)
}

// CustomOption is a free-form configuration entry on a line item (e.g. a
// requested fold type keyed by name). It is not validated against a catalog;
// only its optional price modifier feeds the unit price.
type CustomOption struct {
	Value         string  `bson:"value" json:"value"`
	PriceModifier float64 `bson:"priceModifier,omitempty" json:"priceModifier,omitempty"`
}

// OrderItem is the snapshot of one configured product line with all prices
// resolved server-side at order time.
type OrderItem struct {
	ProductID       primitive.ObjectID      `bson:"productId" json:"productId"`
	Name            string                  `bson:"name" json:"name"`
	UnitPrice       float64                 `bson:"unitPrice" json:"unitPrice"`
	Quantity        int                     `bson:"quantity" json:"quantity"`
	SelectedOptions map[string]string       `bson:"selectedOptions,omitempty" json:"selectedOptions,omitempty"`
	CustomOptions   map[string]CustomOption `bson:"customOptions,omitempty" json:"customOptions,omitempty"`
	Notes           string                  `bson:"notes,omitempty" json:"notes,omitempty"`
	LineTotal       float64                 `bson:"lineTotal" json:"lineTotal"`
}

// ShippingAddress captures delivery details entered at checkout.
type ShippingAddress struct {
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone" json:"phone"`
	City     string `bson:"city" json:"city"`
	District string `bson:"district,omitempty" json:"district,omitempty"`
	Street   string `bson:"street" json:"street"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Order defines the persisted order document. Items and totals are immutable
// after insertion; only the status and payment method are updated later.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem         `bson:"items" json:"items"`
	Subtotal        float64             `bson:"subtotal" json:"subtotal"`
	TaxAmount       float64             `bson:"taxAmount" json:"taxAmount"`
	ShippingAmount  float64             `bson:"shippingAmount" json:"shippingAmount"`
	TotalAmount     float64             `bson:"totalAmount" json:"totalAmount"`
	Currency        string              `bson:"currency" json:"currency"`
	ShippingAddress ShippingAddress     `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	Status          OrderStatus         `bson:"status" json:"status"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}
