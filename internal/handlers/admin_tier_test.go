package handlers

import "testing"

func TestValidateTierShape(t *testing.T) {
	price := 7.5
	modifier := 0.25

	tests := []struct {
		name          string
		optionID      string
		price         *float64
		priceModifier *float64
		wantErr       bool
	}{
		{"product tier with price", "", &price, nil, false},
		{"product tier missing price", "", nil, nil, true},
		{"product tier with modifier", "", &price, &modifier, true},
		{"option tier with modifier", "size-a4", nil, &modifier, false},
		{"option tier missing modifier", "size-a4", nil, nil, true},
		{"option tier with price", "size-a4", &price, &modifier, true},
	}

	for _, tt := range tests {
		message := validateTierShape(tt.optionID, tt.price, tt.priceModifier)
		if (message != "") != tt.wantErr {
			t.Errorf("%s: got %q, wantErr=%v", tt.name, message, tt.wantErr)
		}
	}
}
