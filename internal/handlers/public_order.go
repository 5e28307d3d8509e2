package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"printshop/internal/checkout"
	"printshop/internal/models"
	"printshop/internal/pricing"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	ProductID       string                         `json:"productId" binding:"required"`
	Quantity        int                            `json:"quantity" binding:"required"`
	SelectedOptions map[string]string              `json:"selectedOptions"`
	CustomOptions   map[string]models.CustomOption `json:"customOptions"`
	Notes           string                         `json:"notes"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest `json:"items" binding:"required"`
	ShippingAddress models.ShippingAddress   `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		order, fieldErrors, err := buildOrderFromRequest(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"fieldErrors": fieldErrors})
			return
		}
		order.UserID = userID

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		stored, err := placeOrder(ctx, db, order)
		if err != nil {
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "المنتج غير موجود",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			var qtyErr belowMinQuantityError
			if errors.As(err, &qtyErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":       "الكمية أقل من الحد الأدنى",
					"productId":   qtyErr.ProductID.Hex(),
					"minQuantity": qtyErr.MinQuantity,
					"requested":   qtyErr.Requested,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if userID != nil {
			log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId":     stored.ID.Hex(),
			"subtotal":    stored.Subtotal,
			"taxAmount":   stored.TaxAmount,
			"totalAmount": stored.TotalAmount,
			"currency":    stored.Currency,
			"message":     "order created",
		})
	}
}

// placeOrder persists the order inside a session transaction. Item prices and
// totals on the incoming order are ignored: each line is re-read from the
// catalog and repriced, so a tampered client total never reaches the database.
func placeOrder(ctx context.Context, db *mongo.Database, order models.Order) (models.Order, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return models.Order{}, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		calculatedItems := make([]models.OrderItem, 0, len(order.Items))
		lineTotals := make([]float64, 0, len(order.Items))

		for _, item := range order.Items {
			var raw bson.M
			err := db.Collection("products").FindOne(
				sessCtx,
				bson.M{
					"_id":       item.ProductID,
					"isActive":  bson.M{"$ne": false},
					"isDeleted": bson.M{"$ne": true},
				},
			).Decode(&raw)
			if err == mongo.ErrNoDocuments {
				return nil, productNotFoundError{ProductID: item.ProductID}
			}
			if err != nil {
				return nil, err
			}

			product, err := normalizeProductDocument(raw)
			if err != nil {
				return nil, err
			}

			if item.Quantity < product.MinQuantity {
				return nil, belowMinQuantityError{
					ProductID:   item.ProductID,
					MinQuantity: product.MinQuantity,
					Requested:   item.Quantity,
				}
			}

			cursor, err := db.Collection("quantity_tiers").Find(
				sessCtx,
				bson.M{"productId": product.ID},
			)
			if err != nil {
				return nil, err
			}
			var tiers []models.QuantityTier
			if err := cursor.All(sessCtx, &tiers); err != nil {
				return nil, err
			}

			unitPrice := pricing.UnitPrice(product, item.SelectedOptions, item.CustomOptions, item.Quantity, tiers, now)
			lineTotal := pricing.LineTotal(unitPrice, item.Quantity)

			calculatedItems = append(calculatedItems, models.OrderItem{
				ProductID:       item.ProductID,
				Name:            product.Name,
				UnitPrice:       unitPrice,
				Quantity:        item.Quantity,
				SelectedOptions: item.SelectedOptions,
				CustomOptions:   item.CustomOptions,
				Notes:           item.Notes,
				LineTotal:       lineTotal,
			})
			lineTotals = append(lineTotals, lineTotal)
		}

		totals := pricing.CartTotals(lineTotals)

		order.Items = calculatedItems
		order.Subtotal = totals.Subtotal
		order.TaxAmount = totals.Tax
		order.ShippingAmount = totals.Shipping
		order.TotalAmount = totals.Total
		order.Currency = pricing.Currency

		res, err := db.Collection("orders").InsertOne(sessCtx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}
		return nil, nil
	})
	if err != nil {
		return models.Order{}, err
	}

	return order, nil
}

/* =========================
   GET ORDER (success page)
========================= */

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusNotFound, route, "الطلب غير موجود")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "الطلب غير موجود")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   BUILD ORDER
========================= */

func buildOrderFromRequest(req createOrderRequest) (models.Order, map[string]string, error) {
	if len(req.Items) == 0 {
		return models.Order{}, nil, errors.New("at least one item is required")
	}

	if req.PaymentMethod != checkout.PaymentMethodCash && req.PaymentMethod != checkout.PaymentMethodCard {
		return models.Order{}, nil, errors.New("invalid payment method")
	}

	if fieldErrors := checkout.ValidateAddress(req.ShippingAddress); len(fieldErrors) > 0 {
		return models.Order{}, fieldErrors, nil
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return models.Order{}, nil, errors.New("invalid productId")
		}

		if item.Quantity <= 0 {
			return models.Order{}, nil, errors.New("quantity must be greater than zero")
		}

		items = append(items, models.OrderItem{
			ProductID:       productID,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
			CustomOptions:   item.CustomOptions,
			Notes:           strings.TrimSpace(item.Notes),
		})
	}

	order := models.Order{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          initialOrderStatus(req.PaymentMethod),
		CreatedAt:       time.Now(),
	}

	return order, nil, nil
}

// Cash orders confirm at creation; card orders stay pending until a completed
// payment transaction exists.
func initialOrderStatus(paymentMethod string) models.OrderStatus {
	if paymentMethod == checkout.PaymentMethodCash {
		return models.OrderStatusConfirmed
	}
	return models.OrderStatusPending
}

func userIDFromHeader(header, secret string) (*primitive.ObjectID, error) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errors.New("invalid token format")
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userIDValue, ok := claims["userId"].(string)
	if !ok || strings.TrimSpace(userIDValue) == "" {
		return nil, errors.New("userId claim missing")
	}

	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return nil, errors.New("invalid userId")
	}

	return &userID, nil
}

type belowMinQuantityError struct {
	ProductID   primitive.ObjectID
	MinQuantity int
	Requested   int
}

func (e belowMinQuantityError) Error() string {
	return "quantity below product minimum"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}
