package handlers

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"printshop/internal/models"
)

/* =========================
   MONGO-BACKED STORES
========================= */

type mongoOrderStore struct {
	db *mongo.Database
}

func (s *mongoOrderStore) FindOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := s.db.Collection("orders").FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (s *mongoOrderStore) ConfirmOrder(ctx context.Context, id primitive.ObjectID, paymentMethod string) error {
	_, err := s.db.Collection("orders").UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":        models.OrderStatusConfirmed,
			"paymentMethod": paymentMethod,
		}},
	)
	return err
}

type mongoTransactionStore struct {
	db *mongo.Database
}

func (s *mongoTransactionStore) FindByIdempotencyKey(ctx context.Context, key string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := s.db.Collection("payment_transactions").
		FindOne(ctx, bson.M{"idempotencyKey": key}).
		Decode(&txn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *mongoTransactionStore) InsertPending(ctx context.Context, txn models.PaymentTransaction) (primitive.ObjectID, error) {
	// The unique partial index on idempotencyKey rejects empty strings only
	// if they were indexed, so keyless rows must not carry the field at all.
	doc := bson.M{
		"orderId":        txn.OrderID,
		"paymentMethod":  txn.PaymentMethod,
		"cardType":       txn.CardType,
		"cardLastFour":   txn.CardLastFour,
		"cardholderName": txn.CardholderName,
		"amount":         txn.Amount,
		"currency":       txn.Currency,
		"status":         txn.Status,
		"createdAt":      txn.CreatedAt,
	}
	if txn.IdempotencyKey != "" {
		doc["idempotencyKey"] = txn.IdempotencyKey
	}

	res, err := s.db.Collection("payment_transactions").InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// Settle updates a pending row exactly once; a second settle attempt finds
// no pending row and fails loudly instead of overwriting the outcome.
func (s *mongoTransactionStore) Settle(ctx context.Context, id primitive.ObjectID, settle transactionSettle) error {
	set := bson.M{
		"status":      settle.Status,
		"processedAt": settle.ProcessedAt,
	}
	if settle.TransactionID != "" {
		set["transactionId"] = settle.TransactionID
	}
	if settle.ErrorMessage != "" {
		set["errorMessage"] = settle.ErrorMessage
	}

	res, err := s.db.Collection("payment_transactions").UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.TransactionStatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("transaction already settled")
	}
	return nil
}
