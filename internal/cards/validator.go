package cards

import (
	"errors"
	"strings"
	"time"
)

// User-facing validation errors are localized; callers surface the message
// as-is in the checkout form.
var (
	ErrCardNumberInvalid = errors.New("رقم البطاقة غير صالح")
	ErrCardExpired       = errors.New("البطاقة منتهية الصلاحية")
	ErrExpiryInvalid     = errors.New("تاريخ انتهاء البطاقة غير صالح")
	ErrCVVInvalid        = errors.New("رمز التحقق غير صالح")
	ErrNameInvalid       = errors.New("اسم حامل البطاقة غير صالح")
)

// CardData carries cardholder-entered payment fields. It lives only for the
// duration of a checkout attempt and is never persisted.
type CardData struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
}

// ValidateCardNumber checks digits-only, 13-19 length, and the Luhn checksum.
func ValidateCardNumber(number string) error {
	digits := CleanNumber(number)
	if !isDigits(digits) {
		return ErrCardNumberInvalid
	}
	if len(digits) < 13 || len(digits) > 19 {
		return ErrCardNumberInvalid
	}
	if !luhnValid(digits) {
		return ErrCardNumberInvalid
	}
	return nil
}

// luhnValid doubles every second digit from the right, subtracting 9 from
// results above 9, and accepts when the sum is divisible by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateExpiryDate accepts 2- or 4-digit years (2-digit is 2000+YY) and
// rejects months outside 1-12 or dates before the current month.
func ValidateExpiryDate(month, year int) error {
	return validateExpiryAt(month, year, time.Now())
}

func validateExpiryAt(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return ErrExpiryInvalid
	}
	if year < 100 {
		year += 2000
	}
	if year < now.Year() {
		return ErrCardExpired
	}
	if year == now.Year() && month < int(now.Month()) {
		return ErrCardExpired
	}
	return nil
}

// ValidateCVV requires exactly 3 digits, except 4 for the amex network.
func ValidateCVV(cvv string, network Network) error {
	want := 3
	if network == NetworkAmex {
		want = 4
	}
	if len(cvv) != want || !isDigits(cvv) {
		return ErrCVVInvalid
	}
	return nil
}

// ValidateCardholderName requires a trimmed length of at least 2 composed of
// ASCII letters and spaces. Non-Latin names are rejected, matching the
// embossed-name format on cards issued for the target market.
func ValidateCardholderName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return ErrNameInvalid
	}
	for _, r := range trimmed {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isLetter && r != ' ' {
			return ErrNameInvalid
		}
	}
	return nil
}

// ValidateCreditCard runs all field checks and returns a per-field error map
// keyed the way the checkout form names its inputs, plus an overall flag.
// The CVV length rule follows the detected network.
func ValidateCreditCard(data CardData) (map[string]string, bool) {
	fieldErrors := make(map[string]string)

	if err := ValidateCardNumber(data.CardNumber); err != nil {
		fieldErrors["cardNumber"] = err.Error()
	}
	if err := ValidateExpiryDate(data.ExpiryMonth, data.ExpiryYear); err != nil {
		fieldErrors["expiry"] = err.Error()
	}
	network, _ := Classify(data.CardNumber)
	if err := ValidateCVV(data.CVV, network); err != nil {
		fieldErrors["cvv"] = err.Error()
	}
	if err := ValidateCardholderName(data.CardholderName); err != nil {
		fieldErrors["cardholderName"] = err.Error()
	}

	return fieldErrors, len(fieldErrors) == 0
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
