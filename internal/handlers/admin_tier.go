package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"printshop/internal/models"
)

type TierCreateRequest struct {
	ProductID     string   `json:"productId" binding:"required"`
	OptionID      string   `json:"optionId"`
	Quantity      int      `json:"quantity" binding:"required"`
	Price         *float64 `json:"price"`
	PriceModifier *float64 `json:"priceModifier"`
}

type TierUpdateRequest struct {
	Quantity      *int     `json:"quantity"`
	Price         *float64 `json:"price"`
	PriceModifier *float64 `json:"priceModifier"`
}

// A product-level tier needs an absolute price; an option-level tier needs a
// modifier that replaces the option's own.
func validateTierShape(optionID string, price, priceModifier *float64) string {
	if optionID == "" {
		if price == nil || *price <= 0 {
			return "price required for a product tier"
		}
		if priceModifier != nil {
			return "priceModifier is only valid for an option tier"
		}
		return ""
	}
	if priceModifier == nil {
		return "priceModifier required for an option tier"
	}
	if price != nil {
		return "price is only valid for a product tier"
	}
	return ""
}

/*
GET /admin/api/products/:id/tiers
*/
func GetProductTiers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("quantity_tiers").Find(
			ctx,
			bson.M{"productId": productID},
			options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		tiers := make([]models.QuantityTier, 0)
		if err := cursor.All(ctx, &tiers); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": tiers})
	}
}

/*
POST /admin/api/tiers
*/
func CreateTier(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TierCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be greater than zero"})
			return
		}

		optionID := strings.TrimSpace(req.OptionID)
		if message := validateTierShape(optionID, req.Price, req.PriceModifier); message != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": message})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product not found"})
			return
		}

		// One tier per (product, option, threshold).
		duplicate, err := db.Collection("quantity_tiers").CountDocuments(ctx, bson.M{
			"productId": productID,
			"optionId":  optionID,
			"quantity":  req.Quantity,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if duplicate > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "tier already exists for this quantity"})
			return
		}

		tier := models.QuantityTier{
			ProductID:     productID,
			OptionID:      optionID,
			Quantity:      req.Quantity,
			Price:         req.Price,
			PriceModifier: req.PriceModifier,
			CreatedAt:     time.Now(),
		}

		res, err := db.Collection("quantity_tiers").InsertOne(ctx, tier)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		tier.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, tier)
	}
}

/*
PUT /admin/api/tiers/:id
*/
func UpdateTier(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req TierUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		update := bson.M{}
		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be greater than zero"})
				return
			}
			update["quantity"] = *req.Quantity
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
				return
			}
			update["price"] = *req.Price
		}
		if req.PriceModifier != nil {
			update["priceModifier"] = *req.PriceModifier
		}

		if len(update) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.QuantityTier
		err = db.Collection("quantity_tiers").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": update},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/tiers/:id
*/
func DeleteTier(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("quantity_tiers").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "tier not found"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
