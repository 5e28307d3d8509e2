package checkout

import (
	"regexp"
	"strings"

	"printshop/internal/models"
)

// Saudi mobile numbers: optional leading zero, then 5 and eight digits.
var saPhonePattern = regexp.MustCompile(`^(05|5)\d{8}$`)

const (
	msgFieldRequired = "هذا الحقل مطلوب"
	msgPhoneInvalid  = "رقم الجوال غير صالح"
)

// ValidateAddress checks the shipping form. Returns a field → message map;
// empty means valid. Messages are the user-facing Arabic strings.
func ValidateAddress(addr models.ShippingAddress) map[string]string {
	fieldErrors := make(map[string]string)

	if strings.TrimSpace(addr.Name) == "" {
		fieldErrors["name"] = msgFieldRequired
	}
	if strings.TrimSpace(addr.City) == "" {
		fieldErrors["city"] = msgFieldRequired
	}
	if strings.TrimSpace(addr.Street) == "" {
		fieldErrors["street"] = msgFieldRequired
	}

	phone := stripWhitespace(addr.Phone)
	if phone == "" {
		fieldErrors["phone"] = msgFieldRequired
	} else if !saPhonePattern.MatchString(phone) {
		fieldErrors["phone"] = msgPhoneInvalid
	}

	return fieldErrors
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
