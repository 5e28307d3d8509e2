package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"printshop/internal/gateway"
	"printshop/internal/models"
)

/* =========================
   FAKE STORES
========================= */

type fakeOrderStore struct {
	orders    map[primitive.ObjectID]models.Order
	confirmed map[primitive.ObjectID]string
}

func newFakeOrderStore(orders ...models.Order) *fakeOrderStore {
	s := &fakeOrderStore{
		orders:    make(map[primitive.ObjectID]models.Order),
		confirmed: make(map[primitive.ObjectID]string),
	}
	for _, order := range orders {
		s.orders[order.ID] = order
	}
	return s
}

func (s *fakeOrderStore) FindOrder(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *fakeOrderStore) ConfirmOrder(_ context.Context, id primitive.ObjectID, paymentMethod string) error {
	order, ok := s.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = models.OrderStatusConfirmed
	order.PaymentMethod = paymentMethod
	s.orders[id] = order
	s.confirmed[id] = paymentMethod
	return nil
}

type fakeTransactionStore struct {
	rows []models.PaymentTransaction
}

func (s *fakeTransactionStore) FindByIdempotencyKey(_ context.Context, key string) (*models.PaymentTransaction, error) {
	for i := range s.rows {
		if s.rows[i].IdempotencyKey == key {
			row := s.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (s *fakeTransactionStore) InsertPending(_ context.Context, txn models.PaymentTransaction) (primitive.ObjectID, error) {
	txn.ID = primitive.NewObjectID()
	s.rows = append(s.rows, txn)
	return txn.ID, nil
}

func (s *fakeTransactionStore) Settle(_ context.Context, id primitive.ObjectID, settle transactionSettle) error {
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		if s.rows[i].Status != models.TransactionStatusPending {
			return errors.New("transaction already settled")
		}
		s.rows[i].Status = settle.Status
		s.rows[i].TransactionID = settle.TransactionID
		s.rows[i].ErrorMessage = settle.ErrorMessage
		processedAt := settle.ProcessedAt
		s.rows[i].ProcessedAt = &processedAt
		return nil
	}
	return errors.New("transaction not found")
}

type erroringGateway struct{}

func (erroringGateway) Charge(context.Context, gateway.ChargeRequest) (gateway.ChargeResult, error) {
	return gateway.ChargeResult{}, errors.New("connection reset")
}

/* =========================
   HELPERS
========================= */

func testOrder(total float64) models.Order {
	return models.Order{
		ID:          primitive.NewObjectID(),
		TotalAmount: total,
		Currency:    "SAR",
		Status:      models.OrderStatusPending,
	}
}

func cardPaymentRequest(orderID primitive.ObjectID, amount float64) paymentRequest {
	return paymentRequest{
		OrderID:  orderID.Hex(),
		Amount:   &amount,
		Currency: "SAR",
		CardData: &paymentCardData{
			CardNumber:     "4111 1111 1111 1111",
			CardholderName: "AHMED ALI",
			ExpiryMonth:    12,
			ExpiryYear:     2099,
			CVV:            "123",
		},
	}
}

func newTestProcessor(orders *fakeOrderStore, txns *fakeTransactionStore, gw gateway.PaymentGateway) *paymentProcessor {
	return newPaymentProcessor(orders, txns, gw, time.Second)
}

/* =========================
   TESTS
========================= */

func TestProcessPaymentSuccess(t *testing.T) {
	order := testOrder(230.00)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	status, body := processor.Process(context.Background(), cardPaymentRequest(order.ID, 230.00), "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["success"] != true {
		t.Fatalf("expected success response, got %v", body)
	}
	if body["gateway_transaction_id"] == "" {
		t.Fatalf("expected gateway transaction id, got %v", body)
	}

	if len(txns.rows) != 1 {
		t.Fatalf("expected exactly one transaction row, got %d", len(txns.rows))
	}
	row := txns.rows[0]
	if row.Status != models.TransactionStatusCompleted {
		t.Fatalf("expected completed row, got %s", row.Status)
	}
	if row.CardLastFour != "1111" || row.CardType != "visa" {
		t.Fatalf("unexpected card fields: %+v", row)
	}
	if row.ProcessedAt == nil {
		t.Fatal("expected processedAt to be stamped")
	}

	if orders.confirmed[order.ID] != "card" {
		t.Fatal("expected order to be confirmed with card payment method")
	}
}

func TestProcessPaymentAmountWithinTolerance(t *testing.T) {
	order := testOrder(230.00)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	status, body := processor.Process(context.Background(), cardPaymentRequest(order.ID, 230.005), "")
	if status != http.StatusOK {
		t.Fatalf("expected 0.005 difference to be accepted, got %d: %v", status, body)
	}
}

func TestProcessPaymentAmountMismatchRejected(t *testing.T) {
	order := testOrder(230.00)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	status, body := processor.Process(context.Background(), cardPaymentRequest(order.ID, 231.00), "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered amount, got %d", status)
	}
	if len(txns.rows) != 0 {
		t.Fatalf("no transaction row may exist for a rejected amount, got %d", len(txns.rows))
	}
	if message, _ := body["error"].(string); message == "" {
		t.Fatalf("expected generic error message, got %v", body)
	}
	if orders.confirmed[order.ID] != "" {
		t.Fatal("order must not be confirmed")
	}
}

func TestProcessPaymentOrderNotFound(t *testing.T) {
	orders := newFakeOrderStore()
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	status, _ := processor.Process(context.Background(), cardPaymentRequest(primitive.NewObjectID(), 100), "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if len(txns.rows) != 0 {
		t.Fatal("no transaction row may exist for a missing order")
	}
}

func TestProcessPaymentMissingFields(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	amount := 100.0
	requests := []paymentRequest{
		{},
		{OrderID: order.ID.Hex(), Currency: "SAR", CardData: &paymentCardData{CardNumber: "4111111111111111", CardholderName: "A B", ExpiryMonth: 12, ExpiryYear: 2099, CVV: "123"}},
		{OrderID: order.ID.Hex(), Amount: &amount, Currency: "SAR"},
		{OrderID: order.ID.Hex(), Amount: &amount, Currency: "SAR", CardData: &paymentCardData{CardNumber: "4111111111111111"}},
	}

	for i, req := range requests {
		status, _ := processor.Process(context.Background(), req, "")
		if status != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, status)
		}
	}
	if len(txns.rows) != 0 {
		t.Fatalf("incomplete requests must not create rows, got %d", len(txns.rows))
	}
}

func TestProcessPaymentGatewayDecline(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	req := cardPaymentRequest(order.ID, 100)
	req.CardData.CardNumber = "0000000000000000"

	status, body := processor.Process(context.Background(), req, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for decline, got %d", status)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body)
	}
	if message, _ := body["error_message"].(string); message == "" {
		t.Fatalf("expected decline message, got %v", body)
	}

	if len(txns.rows) != 1 {
		t.Fatalf("expected exactly one failed row, got %d", len(txns.rows))
	}
	if txns.rows[0].Status != models.TransactionStatusFailed || txns.rows[0].ErrorMessage == "" {
		t.Fatalf("unexpected row %+v", txns.rows[0])
	}
	if orders.confirmed[order.ID] != "" {
		t.Fatal("declined payment must leave the order unconfirmed")
	}
}

func TestProcessPaymentHookAmountDeclines(t *testing.T) {
	order := testOrder(999.99)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	status, _ := processor.Process(context.Background(), cardPaymentRequest(order.ID, 999.99), "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected hook amount to decline, got %d", status)
	}
	if len(txns.rows) != 1 || txns.rows[0].Status != models.TransactionStatusFailed {
		t.Fatalf("expected one failed row, got %+v", txns.rows)
	}
}

func TestProcessPaymentGatewayTransportError(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, erroringGateway{})

	status, _ := processor.Process(context.Background(), cardPaymentRequest(order.ID, 100), "")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for transport failure, got %d", status)
	}
	if len(txns.rows) != 1 || txns.rows[0].Status != models.TransactionStatusFailed {
		t.Fatalf("transport failure must settle the row as failed, got %+v", txns.rows)
	}
	if orders.confirmed[order.ID] != "" {
		t.Fatal("order must stay unconfirmed on transport failure")
	}
}

// Without an idempotency key a repeated call creates a second row. This is
// the documented current behavior; the assertion keeps any change to it
// intentional.
func TestProcessPaymentDuplicateWithoutKeyCreatesTwoRows(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	req := cardPaymentRequest(order.ID, 100)
	if status, _ := processor.Process(context.Background(), req, ""); status != http.StatusOK {
		t.Fatal("first call should succeed")
	}
	if status, _ := processor.Process(context.Background(), req, ""); status != http.StatusOK {
		t.Fatal("second call should succeed")
	}

	if len(txns.rows) != 2 {
		t.Fatalf("expected two rows without idempotency key, got %d", len(txns.rows))
	}
}

func TestProcessPaymentIdempotentReplay(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	req := cardPaymentRequest(order.ID, 100)

	status, first := processor.Process(context.Background(), req, "key-1")
	if status != http.StatusOK {
		t.Fatalf("first call failed: %v", first)
	}

	status, second := processor.Process(context.Background(), req, "key-1")
	if status != http.StatusOK {
		t.Fatalf("replay failed: %v", second)
	}

	if len(txns.rows) != 1 {
		t.Fatalf("replay must not create a second row, got %d", len(txns.rows))
	}
	if first["transaction_id"] != second["transaction_id"] {
		t.Fatalf("replay must return the same transaction id: %v vs %v", first, second)
	}
}

func TestProcessPaymentIdempotentReplayOfDecline(t *testing.T) {
	order := testOrder(100)
	orders := newFakeOrderStore(order)
	txns := &fakeTransactionStore{}
	processor := newTestProcessor(orders, txns, gateway.NewMockGateway(0))

	req := cardPaymentRequest(order.ID, 100)
	req.CardData.CardNumber = "0000000000000000"

	if status, _ := processor.Process(context.Background(), req, "key-2"); status != http.StatusBadRequest {
		t.Fatal("first call should decline")
	}
	status, body := processor.Process(context.Background(), req, "key-2")
	if status != http.StatusBadRequest {
		t.Fatalf("replayed decline should stay 400, got %d", status)
	}
	if body["success"] != false {
		t.Fatalf("expected replayed decline body, got %v", body)
	}
	if len(txns.rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(txns.rows))
	}
}
