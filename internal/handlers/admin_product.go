package handlers

import (
	"context"
	"fmt"
	"math"
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

/* =======================
   REQUEST MODELS
======================= */

type ProductCreateRequest struct {
	Name        string              `json:"name" binding:"required"`
	NameEn      string              `json:"nameEn"`
	Slug        string              `json:"slug"`
	BasePrice   float64             `json:"basePrice" binding:"required"`
	MinQuantity int                 `json:"minQuantity"`
	SaleEnabled bool                `json:"saleEnabled"`
	SalePrice   *float64            `json:"salePrice"`
	SaleStartAt *time.Time          `json:"saleStartAt"`
	SaleEndAt   *time.Time          `json:"saleEndAt"`
	OptionSlots []models.OptionSlot `json:"optionSlots"`
	CategoryIDs []string            `json:"category_id" binding:"required"`
	Description string              `json:"description"`
	IsActive    *bool               `json:"isActive"`
}

type ProductUpdateRequest struct {
	Name        *string              `json:"name"`
	NameEn      *string              `json:"nameEn"`
	Slug        *string              `json:"slug"`
	BasePrice   *float64             `json:"basePrice"`
	MinQuantity *int                 `json:"minQuantity"`
	SaleEnabled *bool                `json:"saleEnabled"`
	SalePrice   *float64             `json:"salePrice"`
	SaleStartAt *time.Time           `json:"saleStartAt"`
	SaleEndAt   *time.Time           `json:"saleEndAt"`
	OptionSlots *[]models.OptionSlot `json:"optionSlots"`
	CategoryIDs *[]string            `json:"category_id"`
	Description *string              `json:"description"`
	IsActive    *bool                `json:"isActive"`
}

/* =======================
   HELPERS
======================= */

func normalizeCategories(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)

	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func resolveCategoryNamesByIDs(ctx context.Context, db *mongo.Database, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("category_id required")
	}

	seen := map[primitive.ObjectID]struct{}{}
	ordered := make([]primitive.ObjectID, 0, len(ids))

	for _, raw := range ids {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		objectID, err := primitive.ObjectIDFromHex(value)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %s", value)
		}
		if _, ok := seen[objectID]; ok {
			continue
		}
		seen[objectID] = struct{}{}
		ordered = append(ordered, objectID)
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("category_id required")
	}

	cursor, err := db.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ordered}})
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	nameByID := make(map[primitive.ObjectID]string, len(categories))
	for _, category := range categories {
		nameByID[category.ID] = category.Name
	}

	names := make([]string, 0, len(ordered))
	for _, objectID := range ordered {
		name, ok := nameByID[objectID]
		if !ok {
			return nil, fmt.Errorf("category not found: %s", objectID.Hex())
		}
		names = append(names, name)
	}

	return names, nil
}

// validateOptionSlots rejects slots with blank or duplicate ids; the ids key
// selected options on order items, so they must stay stable and unique.
func validateOptionSlots(slots []models.OptionSlot) error {
	slotIDs := map[string]struct{}{}
	for _, slot := range slots {
		slotID := strings.TrimSpace(slot.ID)
		if slotID == "" {
			return fmt.Errorf("option slot id required")
		}
		if _, ok := slotIDs[slotID]; ok {
			return fmt.Errorf("duplicate option slot id: %s", slotID)
		}
		slotIDs[slotID] = struct{}{}

		if strings.TrimSpace(slot.Label) == "" {
			return fmt.Errorf("option slot label required: %s", slotID)
		}
		if len(slot.Options) == 0 {
			return fmt.Errorf("option slot must have options: %s", slotID)
		}

		optionIDs := map[string]struct{}{}
		for _, opt := range slot.Options {
			optionID := strings.TrimSpace(opt.ID)
			if optionID == "" {
				return fmt.Errorf("option id required in slot %s", slotID)
			}
			if _, ok := optionIDs[optionID]; ok {
				return fmt.Errorf("duplicate option id in slot %s: %s", slotID, optionID)
			}
			optionIDs[optionID] = struct{}{}
		}
	}
	return nil
}

/* =======================
   GET (ADMIN) - LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(
			c.Query("page"),
			c.Query("limit"),
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"nameEn": bson.M{"$regex": search, "$options": "i"}},
				{"slug": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
			filter["isActive"] = strings.EqualFold(isActive, "true")
		}

		ctx := context.Background()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		if req.BasePrice <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid basePrice"})
			return
		}

		minQuantity := req.MinQuantity
		if minQuantity <= 0 {
			minQuantity = 1
		}

		salePrice := 0.0
		if req.SalePrice != nil {
			salePrice = *req.SalePrice
		}
		if err := validateSaleFields(req.BasePrice, req.SaleEnabled, salePrice, req.SalePrice != nil); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validateSaleWindow(req.SaleStartAt, req.SaleEndAt); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := validateOptionSlots(req.OptionSlots); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		categoryNames, err := resolveCategoryNamesByIDs(context.Background(), db, req.CategoryIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		product := models.Product{
			Name:        name,
			NameEn:      strings.TrimSpace(req.NameEn),
			Slug:        strings.TrimSpace(req.Slug),
			BasePrice:   req.BasePrice,
			MinQuantity: minQuantity,
			SaleEnabled: req.SaleEnabled,
			SalePrice:   salePrice,
			SaleStartAt: req.SaleStartAt,
			SaleEndAt:   req.SaleEndAt,
			OptionSlots: req.OptionSlots,
			Category:    models.StringList(normalizeCategories(categoryNames)),
			Description: strings.TrimSpace(req.Description),
			IsActive:    isActive,
			IsDeleted:   false,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("products").InsertOne(context.Background(), product)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		product.ID = res.InsertedID.(primitive.ObjectID)
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		updateSet := bson.M{}
		updateUnset := bson.M{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
				return
			}
			updateSet["name"] = name
		}
		if req.NameEn != nil {
			updateSet["nameEn"] = strings.TrimSpace(*req.NameEn)
		}
		if req.Slug != nil {
			slug := strings.TrimSpace(*req.Slug)
			if slug == "" {
				updateUnset["slug"] = ""
			} else {
				updateSet["slug"] = slug
			}
		}
		if req.BasePrice != nil {
			if *req.BasePrice <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid basePrice"})
				return
			}
			updateSet["basePrice"] = *req.BasePrice
		}
		if req.MinQuantity != nil {
			if *req.MinQuantity <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "minQuantity must be greater than zero"})
				return
			}
			updateSet["minQuantity"] = *req.MinQuantity
		}
		if req.OptionSlots != nil {
			if err := validateOptionSlots(*req.OptionSlots); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updateSet["optionSlots"] = *req.OptionSlots
		}
		if req.CategoryIDs != nil {
			categoryNames, err := resolveCategoryNamesByIDs(context.Background(), db, *req.CategoryIDs)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updateSet["category"] = models.StringList(normalizeCategories(categoryNames))
		}
		if req.Description != nil {
			updateSet["description"] = strings.TrimSpace(*req.Description)
		}
		if req.IsActive != nil {
			updateSet["isActive"] = *req.IsActive
		}
		if req.SaleStartAt != nil {
			updateSet["saleStartAt"] = *req.SaleStartAt
		}
		if req.SaleEndAt != nil {
			updateSet["saleEndAt"] = *req.SaleEndAt
		}

		if req.BasePrice != nil || req.SaleEnabled != nil || req.SalePrice != nil || req.SaleStartAt != nil || req.SaleEndAt != nil {
			var raw bson.M
			err := db.Collection("products").FindOne(
				context.Background(),
				bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
			).Decode(&raw)
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
				return
			}
			existing, err := normalizeProductDocument(raw)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
				return
			}

			saleUpdate, err := resolveSaleUpdate(existing.BasePrice, existing.SaleEnabled, existing.SalePrice, saleUpdateInput{
				BasePrice:   req.BasePrice,
				SaleEnabled: req.SaleEnabled,
				SalePrice:   req.SalePrice,
				SaleStartAt: req.SaleStartAt,
				SaleEndAt:   req.SaleEndAt,
			})
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if saleUpdate.SetSaleEnabled {
				updateSet["saleEnabled"] = saleUpdate.SaleEnabled
			}
			if saleUpdate.SetSalePrice {
				updateSet["salePrice"] = saleUpdate.SalePrice
			}
		}

		if len(updateSet) == 0 && len(updateUnset) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		update := bson.M{}
		if len(updateSet) > 0 {
			update["$set"] = updateSet
		}
		if len(updateUnset) > 0 {
			update["$unset"] = updateUnset
		}

		result, err := db.Collection("products").UpdateOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			update,
		)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "slug already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		var raw bson.M
		err = db.Collection("products").FindOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
		).Decode(&raw)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		updated, err := normalizeProductDocument(raw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		res, err := db.Collection("products").UpdateOne(
			context.Background(),
			bson.M{
				"_id":       id,
				"isDeleted": bson.M{"$ne": true},
			},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"deletedAt": time.Now(),
				"isActive":  false,
			}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
