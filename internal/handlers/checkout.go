package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"printshop/internal/checkout"
	"printshop/internal/gateway"
	"printshop/internal/models"
)

// mongoOrderPlacer adapts the shared order insertion path to the checkout
// flow. Cart items carry no prices; placeOrder resolves everything.
type mongoOrderPlacer struct {
	db     *mongo.Database
	userID *primitive.ObjectID
}

func (p *mongoOrderPlacer) PlaceOrder(ctx context.Context, sub checkout.Submission) (checkout.PlacedOrder, error) {
	items := make([]models.OrderItem, 0, len(sub.Items))
	for _, item := range sub.Items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			return checkout.PlacedOrder{}, errors.New("invalid productId")
		}
		if item.Quantity <= 0 {
			return checkout.PlacedOrder{}, errors.New("quantity must be greater than zero")
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
		UserID:          p.userID,
		Items:           items,
		ShippingAddress: sub.Address,
		PaymentMethod:   sub.PaymentMethod,
		Status:          initialOrderStatus(sub.PaymentMethod),
		CreatedAt:       time.Now(),
	}

	stored, err := placeOrder(ctx, p.db, order)
	if err != nil {
		return checkout.PlacedOrder{}, err
	}

	return checkout.PlacedOrder{
		OrderID:     stored.ID.Hex(),
		TotalAmount: stored.TotalAmount,
		Currency:    currencyOrDefault(stored.Currency),
	}, nil
}

// SubmitCheckout is the POST /checkout handler: one request drives the whole
// attempt, from validation through optional card payment, and returns the
// terminal checkout result.
func SubmitCheckout(db *mongo.Database, gw gateway.PaymentGateway, gatewayTimeout time.Duration, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var sub checkout.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		processor := newPaymentProcessor(
			&mongoOrderStore{db: db},
			&mongoTransactionStore{db: db},
			gw,
			gatewayTimeout,
		)

		flow := checkout.NewFlow(
			&mongoOrderPlacer{db: db, userID: userID},
			&paymentFlowAdapter{processor: processor},
		)

		result, err := flow.Submit(c.Request.Context(), sub)
		switch {
		case err != nil && result.State == checkout.StateFailed:
			// The attempt reached a terminal failure; the result still tells
			// the client where to navigate.
			c.JSON(http.StatusBadRequest, result)
		case err != nil:
			respondWithError(c, http.StatusConflict, route, err.Error())
		case len(result.FieldErrors) > 0 || result.TermsRequired:
			c.JSON(http.StatusUnprocessableEntity, result)
		default:
			c.JSON(http.StatusOK, result)
		}
	}
}
