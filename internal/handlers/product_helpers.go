package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"printshop/internal/models"
	"printshop/internal/pricing"
)

// normalizeProductDocument smooths over legacy document shapes before the
// strict struct decode. Early products stored category as a plain string and
// minQuantity in whatever numeric type the importing script produced.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}

	if val, ok := raw["minQuantity"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["minQuantity"] = int(typed)
		case int64:
			raw["minQuantity"] = int(typed)
		case float64:
			raw["minQuantity"] = int(typed)
		case int:
			raw["minQuantity"] = typed
		default:
			raw["minQuantity"] = 1
		}
	} else {
		raw["minQuantity"] = 1
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	if p.MinQuantity < 1 {
		p.MinQuantity = 1
	}
	p.IsOnSale = pricing.IsOnSale(p, time.Now())

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
