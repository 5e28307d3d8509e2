package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"printshop/internal/cards"
	"printshop/internal/gateway"
	"printshop/internal/models"
	"printshop/internal/pricing"
)

// amountTolerance is the absolute difference allowed between the stored
// order total and the client-reported amount. Anything beyond it is treated
// as price tampering and rejected before a transaction row exists.
const amountTolerance = 0.01

var ErrOrderNotFound = errors.New("order not found")

/* =========================
   REQUEST / RESPONSE DTOs
========================= */

type paymentCardData struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
}

type paymentRequest struct {
	OrderID  string           `json:"order_id"`
	Amount   *float64         `json:"amount"`
	Currency string           `json:"currency"`
	CardData *paymentCardData `json:"card_data"`
}

func (r paymentRequest) complete() bool {
	if strings.TrimSpace(r.OrderID) == "" || r.Amount == nil || strings.TrimSpace(r.Currency) == "" {
		return false
	}
	card := r.CardData
	if card == nil {
		return false
	}
	return strings.TrimSpace(card.CardNumber) != "" &&
		strings.TrimSpace(card.CardholderName) != "" &&
		card.ExpiryMonth != 0 && card.ExpiryYear != 0 &&
		strings.TrimSpace(card.CVV) != ""
}

/* =========================
   STORE INTERFACES
========================= */

type paymentOrderStore interface {
	FindOrder(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	ConfirmOrder(ctx context.Context, id primitive.ObjectID, paymentMethod string) error
}

type transactionSettle struct {
	Status        string
	TransactionID string
	ErrorMessage  string
	ProcessedAt   time.Time
}

type paymentTransactionStore interface {
	FindByIdempotencyKey(ctx context.Context, key string) (*models.PaymentTransaction, error)
	InsertPending(ctx context.Context, txn models.PaymentTransaction) (primitive.ObjectID, error)
	Settle(ctx context.Context, id primitive.ObjectID, settle transactionSettle) error
}

/* =========================
   PROCESSOR
========================= */

// paymentProcessor is the server-side settle step for card payments. It never
// trusts the client-reported amount: the stored order total is re-read and
// compared before any transaction row is created.
type paymentProcessor struct {
	orders         paymentOrderStore
	transactions   paymentTransactionStore
	gateway        gateway.PaymentGateway
	gatewayTimeout time.Duration
	nowFunc        func() time.Time
}

func newPaymentProcessor(orders paymentOrderStore, transactions paymentTransactionStore, gw gateway.PaymentGateway, gatewayTimeout time.Duration) *paymentProcessor {
	return &paymentProcessor{
		orders:         orders,
		transactions:   transactions,
		gateway:        gw,
		gatewayTimeout: gatewayTimeout,
		nowFunc:        time.Now,
	}
}

// Process runs the full transaction flow and returns the HTTP status plus
// response body. idempotencyKey may be empty; when set, a repeated request
// replays the stored outcome instead of charging twice.
func (p *paymentProcessor) Process(ctx context.Context, req paymentRequest, idempotencyKey string) (int, gin.H) {
	if !req.complete() {
		return http.StatusBadRequest, gin.H{"error": "بيانات الدفع غير مكتملة"}
	}

	orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
	if err != nil {
		return http.StatusNotFound, gin.H{"error": "الطلب غير موجود"}
	}

	order, err := p.orders.FindOrder(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return http.StatusNotFound, gin.H{"error": "الطلب غير موجود"}
	}
	if err != nil {
		log.Println("[PAYMENT] [ERROR] order lookup failed:", err)
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}

	// Reject tampered amounts without echoing the attempted value.
	if math.Abs(order.TotalAmount-*req.Amount) > amountTolerance {
		log.Printf("[PAYMENT] [WARN] amount mismatch for order %s", orderID.Hex())
		return http.StatusBadRequest, gin.H{"error": "مبلغ العملية غير مطابق للطلب"}
	}

	if idempotencyKey != "" {
		if status, body, replayed := p.replay(ctx, idempotencyKey); replayed {
			return status, body
		}
	}

	network, _ := cards.Classify(req.CardData.CardNumber)

	txn := models.PaymentTransaction{
		OrderID:        orderID,
		PaymentMethod:  "card",
		CardType:       network.String(),
		CardLastFour:   cards.LastFour(req.CardData.CardNumber),
		CardholderName: req.CardData.CardholderName,
		Amount:         *req.Amount,
		Currency:       req.Currency,
		Status:         models.TransactionStatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      p.nowFunc(),
	}

	txnID, err := p.transactions.InsertPending(ctx, txn)
	if err != nil {
		log.Println("[PAYMENT] [ERROR] transaction insert failed:", err)
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}

	chargeCtx, cancel := context.WithTimeout(ctx, p.gatewayTimeout)
	defer cancel()

	result, chargeErr := p.gateway.Charge(chargeCtx, gateway.ChargeRequest{
		Amount:         *req.Amount,
		Currency:       req.Currency,
		CardNumber:     req.CardData.CardNumber,
		CardholderName: req.CardData.CardholderName,
	})

	var decline *gateway.DeclineError
	switch {
	case chargeErr == nil:
		if err := p.transactions.Settle(ctx, txnID, transactionSettle{
			Status:        models.TransactionStatusCompleted,
			TransactionID: result.TransactionID,
			ProcessedAt:   p.nowFunc(),
		}); err != nil {
			log.Println("[PAYMENT] [ERROR] transaction settle failed:", err)
			return http.StatusInternalServerError, gin.H{"error": "internal server error"}
		}

		// Confirm strictly after the completed transaction is recorded, so
		// a confirmed order always has a completed transaction behind it.
		if err := p.orders.ConfirmOrder(ctx, orderID, "card"); err != nil {
			log.Println("[PAYMENT] [ERROR] order confirm failed:", err)
			return http.StatusInternalServerError, gin.H{"error": "internal server error"}
		}

		log.Printf("[PAYMENT] [INFO] order %s paid, transaction %s", orderID.Hex(), txnID.Hex())
		return http.StatusOK, gin.H{
			"success":                true,
			"transaction_id":         txnID.Hex(),
			"gateway_transaction_id": result.TransactionID,
		}

	case errors.As(chargeErr, &decline):
		if err := p.transactions.Settle(ctx, txnID, transactionSettle{
			Status:       models.TransactionStatusFailed,
			ErrorMessage: decline.Reason,
			ProcessedAt:  p.nowFunc(),
		}); err != nil {
			log.Println("[PAYMENT] [ERROR] transaction settle failed:", err)
			return http.StatusInternalServerError, gin.H{"error": "internal server error"}
		}

		log.Printf("[PAYMENT] [INFO] order %s declined: %s", orderID.Hex(), decline.Reason)
		return http.StatusBadRequest, gin.H{
			"success":        false,
			"transaction_id": txnID.Hex(),
			"error_message":  decline.Reason,
		}

	default:
		// Transport failure or timeout: record it, but surface as a server
		// error rather than a decline.
		if err := p.transactions.Settle(ctx, txnID, transactionSettle{
			Status:       models.TransactionStatusFailed,
			ErrorMessage: "تعذر الاتصال ببوابة الدفع",
			ProcessedAt:  p.nowFunc(),
		}); err != nil {
			log.Println("[PAYMENT] [ERROR] transaction settle failed:", err)
		}

		log.Println("[PAYMENT] [ERROR] gateway call failed:", chargeErr)
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}

// replay returns the stored outcome for a previously seen idempotency key.
func (p *paymentProcessor) replay(ctx context.Context, key string) (int, gin.H, bool) {
	existing, err := p.transactions.FindByIdempotencyKey(ctx, key)
	if err != nil {
		log.Println("[PAYMENT] [ERROR] idempotency lookup failed:", err)
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}, true
	}
	if existing == nil {
		return 0, nil, false
	}

	switch existing.Status {
	case models.TransactionStatusCompleted:
		return http.StatusOK, gin.H{
			"success":                true,
			"transaction_id":         existing.ID.Hex(),
			"gateway_transaction_id": existing.TransactionID,
		}, true
	case models.TransactionStatusFailed:
		return http.StatusBadRequest, gin.H{
			"success":        false,
			"transaction_id": existing.ID.Hex(),
			"error_message":  existing.ErrorMessage,
		}, true
	default:
		return http.StatusConflict, gin.H{"error": "العملية قيد التنفيذ"}, true
	}
}

/* =========================
   HANDLER
========================= */

// ProcessPayment is the POST /payments/process handler. CORS headers and the
// OPTIONS preflight are handled by middleware.PaymentCORS on the route.
func ProcessPayment(db *mongo.Database, gw gateway.PaymentGateway, gatewayTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/process"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "بيانات الدفع غير مكتملة")
			return
		}

		processor := newPaymentProcessor(
			&mongoOrderStore{db: db},
			&mongoTransactionStore{db: db},
			gw,
			gatewayTimeout,
		)

		status, body := processor.Process(
			c.Request.Context(),
			req,
			strings.TrimSpace(c.GetHeader("Idempotency-Key")),
		)
		c.JSON(status, body)
	}
}

// paymentFlowAdapter lets the checkout orchestrator reuse the exact same
// settle path as the public payment endpoint.
type paymentFlowAdapter struct {
	processor *paymentProcessor
}

func (a *paymentFlowAdapter) ProcessPayment(ctx context.Context, orderID string, amount float64, currency string, card cards.CardData) error {
	req := paymentRequest{
		OrderID:  orderID,
		Amount:   &amount,
		Currency: currency,
		CardData: &paymentCardData{
			CardNumber:     card.CardNumber,
			CardholderName: card.CardholderName,
			ExpiryMonth:    card.ExpiryMonth,
			ExpiryYear:     card.ExpiryYear,
			CVV:            card.CVV,
		},
	}

	status, body := a.processor.Process(ctx, req, "")
	if status != http.StatusOK {
		if message, ok := body["error_message"].(string); ok && message != "" {
			return errors.New(message)
		}
		if message, ok := body["error"].(string); ok && message != "" {
			return errors.New(message)
		}
		return errors.New("payment failed")
	}
	return nil
}

// currencyOrDefault guards against orders stored before the currency field
// existed.
func currencyOrDefault(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return pricing.Currency
	}
	return currency
}
