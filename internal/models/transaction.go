package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment transaction statuses. A row is inserted as pending and settled
// exactly once to completed or failed.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// PaymentTransaction records one card payment attempt. The full card number
// is never stored; only the detected network and the last four digits.
type PaymentTransaction struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID        primitive.ObjectID `bson:"orderId" json:"orderId"`
	PaymentMethod  string             `bson:"paymentMethod" json:"paymentMethod"`
	CardType       string             `bson:"cardType" json:"cardType"`
	CardLastFour   string             `bson:"cardLastFour" json:"cardLastFour"`
	CardholderName string             `bson:"cardholderName" json:"cardholderName"`
	Amount         float64            `bson:"amount" json:"amount"`
	Currency       string             `bson:"currency" json:"currency"`
	Status         string             `bson:"status" json:"status"`
	TransactionID  string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	ErrorMessage   string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	IdempotencyKey string             `bson:"idempotencyKey,omitempty" json:"idempotencyKey,omitempty"`
	ProcessedAt    *time.Time         `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
