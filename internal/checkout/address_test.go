package checkout

import (
	"testing"

	"printshop/internal/models"
)

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:   "أحمد علي",
		Phone:  "0512345678",
		City:   "الرياض",
		Street: "شارع العليا",
	}
}

func TestValidateAddressAcceptsValid(t *testing.T) {
	if errs := ValidateAddress(validAddress()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateAddressRequiredFields(t *testing.T) {
	errs := ValidateAddress(models.ShippingAddress{})
	for _, field := range []string{"name", "phone", "city", "street"} {
		if errs[field] == "" {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestValidateAddressPhonePattern(t *testing.T) {
	valid := []string{"0512345678", "512345678", "05 1234 5678"}
	for _, phone := range valid {
		addr := validAddress()
		addr.Phone = phone
		if errs := ValidateAddress(addr); errs["phone"] != "" {
			t.Fatalf("expected %q to be valid, got %v", phone, errs["phone"])
		}
	}

	invalid := []string{"0612345678", "05123456", "051234567890", "abc", "+966512345678"}
	for _, phone := range invalid {
		addr := validAddress()
		addr.Phone = phone
		if errs := ValidateAddress(addr); errs["phone"] == "" {
			t.Fatalf("expected %q to be rejected", phone)
		}
	}
}
