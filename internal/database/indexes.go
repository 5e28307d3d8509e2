package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	slugIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().
			SetName("slug_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"slug": bson.M{
					"$exists": true,
				},
			}),
	}

	log.Println("EnsureProductIndexes: creating slug_unique index")
	_, err := indexes.CreateOne(ctx, slugIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: slug index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: slug_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_index"),
	}

	log.Println("EnsureOrderIndexes: creating userId_index index")
	_, err := indexes.CreateOne(ctx, userIDIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: userId_index index created")
	return nil
}

func EnsureTransactionIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("payment_transactions").Indexes()

	orderIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}},
		Options: options.Index().SetName("orderId_index"),
	}

	// Idempotency keys must be unique only when present; keyless requests
	// keep the documented duplicate behavior.
	idempotencyIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "idempotencyKey", Value: 1}},
		Options: options.Index().
			SetName("idempotencyKey_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"idempotencyKey": bson.M{
					"$exists": true,
					"$type":   "string",
				},
			}),
	}

	log.Println("EnsureTransactionIndexes: creating orderId and idempotencyKey indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{orderIDIndex, idempotencyIndex})
	if err != nil {
		log.Println("EnsureTransactionIndexes: index error:", err)
		return err
	}
	log.Println("EnsureTransactionIndexes: indexes created")
	return nil
}

func EnsureTierIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("quantity_tiers").Indexes()

	productIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "productId", Value: 1}},
		Options: options.Index().SetName("productId_index"),
	}

	log.Println("EnsureTierIndexes: creating productId_index index")
	_, err := indexes.CreateOne(ctx, productIDIndex)
	if err != nil {
		log.Println("EnsureTierIndexes: productId index error:", err)
		return err
	}
	log.Println("EnsureTierIndexes: productId_index index created")
	return nil
}

func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("admins").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAdminIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureAdminIndexes: email_unique index created")
	return nil
}
