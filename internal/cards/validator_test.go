package cards

import (
	"testing"
	"time"
)

func TestValidateCardNumberLuhn(t *testing.T) {
	if err := ValidateCardNumber("4111111111111111"); err != nil {
		t.Fatalf("expected valid Luhn number, got %v", err)
	}
	if err := ValidateCardNumber("4111 1111 1111 1111"); err != nil {
		t.Fatalf("expected spaced number to validate, got %v", err)
	}
	if err := ValidateCardNumber("4111111111111112"); err == nil {
		t.Fatal("expected Luhn failure for off-by-one number")
	}
}

func TestValidateCardNumberRejectsBadInput(t *testing.T) {
	tests := []string{
		"",
		"4111a11111111111",
		"411111111111", // 12 digits, too short
		"41111111111111111111", // 20 digits, too long
	}
	for _, number := range tests {
		if err := ValidateCardNumber(number); err == nil {
			t.Fatalf("expected rejection for %q", number)
		}
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	if err := validateExpiryAt(6, 2026, now); err != nil {
		t.Fatalf("current month/year must not be expired, got %v", err)
	}
	if err := validateExpiryAt(5, 2026, now); err == nil {
		t.Fatal("previous month of current year must be expired")
	}
	if err := validateExpiryAt(12, 2025, now); err == nil {
		t.Fatal("previous year must be expired")
	}
	if err := validateExpiryAt(1, 2027, now); err != nil {
		t.Fatalf("next year must be valid, got %v", err)
	}
}

func TestValidateExpiryTwoDigitYear(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	if err := validateExpiryAt(7, 26, now); err != nil {
		t.Fatalf("two-digit year 26 must read as 2026, got %v", err)
	}
	if err := validateExpiryAt(7, 25, now); err == nil {
		t.Fatal("two-digit year 25 must read as expired 2025")
	}
}

func TestValidateExpiryRejectsBadMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		if err := validateExpiryAt(month, 2030, time.Now()); err == nil {
			t.Fatalf("expected rejection for month %d", month)
		}
	}
}

func TestValidateCVVLengthByNetwork(t *testing.T) {
	if err := ValidateCVV("1234", NetworkAmex); err != nil {
		t.Fatalf("amex takes 4 digits, got %v", err)
	}
	if err := ValidateCVV("1234", NetworkVisa); err == nil {
		t.Fatal("visa must reject 4-digit cvv")
	}
	if err := ValidateCVV("123", NetworkVisa); err != nil {
		t.Fatalf("visa takes 3 digits, got %v", err)
	}
	if err := ValidateCVV("123", NetworkAmex); err == nil {
		t.Fatal("amex must reject 3-digit cvv")
	}
	if err := ValidateCVV("12a", NetworkVisa); err == nil {
		t.Fatal("non-digit cvv must be rejected")
	}
}

func TestValidateCardholderName(t *testing.T) {
	if err := ValidateCardholderName("AHMED ALI"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
	if err := ValidateCardholderName("  A  "); err == nil {
		t.Fatal("single letter must be rejected")
	}
	if err := ValidateCardholderName("AHMED-ALI"); err == nil {
		t.Fatal("punctuation must be rejected")
	}
	if err := ValidateCardholderName(""); err == nil {
		t.Fatal("empty name must be rejected")
	}
}

func TestValidateCreditCardAggregate(t *testing.T) {
	fieldErrors, ok := ValidateCreditCard(CardData{
		CardNumber:     "4111111111111111",
		CardholderName: "AHMED ALI",
		ExpiryMonth:    12,
		ExpiryYear:     2099,
		CVV:            "123",
	})
	if !ok || len(fieldErrors) != 0 {
		t.Fatalf("expected clean card to pass, got %v", fieldErrors)
	}

	fieldErrors, ok = ValidateCreditCard(CardData{
		CardNumber:     "4111111111111112",
		CardholderName: "A",
		ExpiryMonth:    0,
		ExpiryYear:     2099,
		CVV:            "12",
	})
	if ok {
		t.Fatal("expected aggregate failure")
	}
	for _, field := range []string{"cardNumber", "expiry", "cvv", "cardholderName"} {
		if fieldErrors[field] == "" {
			t.Fatalf("expected error for field %s, got %v", field, fieldErrors)
		}
	}
}

func TestValidateCreditCardAmexCVV(t *testing.T) {
	// CVV length follows the detected network from the card number.
	fieldErrors, ok := ValidateCreditCard(CardData{
		CardNumber:     "378282246310005",
		CardholderName: "AHMED ALI",
		ExpiryMonth:    12,
		ExpiryYear:     2099,
		CVV:            "1234",
	})
	if !ok {
		t.Fatalf("expected amex with 4-digit cvv to pass, got %v", fieldErrors)
	}
}
