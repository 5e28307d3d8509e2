package pricing

import (
	"math"
	"testing"
	"time"

	"printshop/internal/models"
)

func float(v float64) *float64 { return &v }

func businessCards() models.Product {
	return models.Product{
		Name:        "كروت شخصية",
		BasePrice:   10,
		MinQuantity: 50,
		OptionSlots: []models.OptionSlot{
			{
				ID:    "size",
				Label: "المقاس",
				Options: []models.ProductOption{
					{ID: "size-a4", Label: "A4", PriceModifier: 0},
					{ID: "size-a3", Label: "A3", PriceModifier: 2.5},
				},
			},
			{
				ID:    "material",
				Label: "الخامة",
				Options: []models.ProductOption{
					{ID: "mat-matte", Label: "مطفي", PriceModifier: 0},
					{ID: "mat-gloss", Label: "لامع", PriceModifier: 1.25},
				},
			},
		},
	}
}

func TestResolveProductTierHighestThresholdWins(t *testing.T) {
	tiers := []models.QuantityTier{
		{Quantity: 100, Price: float(9.00)},
		{Quantity: 500, Price: float(7.50)},
		{Quantity: 1000, Price: float(6.00)},
	}

	tier := ResolveProductTier(tiers, 600)
	if tier == nil || tier.Quantity != 500 {
		t.Fatalf("expected 500 tier for quantity 600, got %+v", tier)
	}

	if tier := ResolveProductTier(tiers, 99); tier != nil {
		t.Fatalf("expected no tier below lowest threshold, got %+v", tier)
	}

	tier = ResolveProductTier(tiers, 1000)
	if tier == nil || tier.Quantity != 1000 {
		t.Fatalf("expected exact threshold to qualify, got %+v", tier)
	}
}

func TestResolveProductTierOrderIndependent(t *testing.T) {
	// Admin screens do not guarantee insertion order; resolution may not
	// depend on it.
	tiers := []models.QuantityTier{
		{Quantity: 1000, Price: float(6.00)},
		{Quantity: 100, Price: float(9.00)},
		{Quantity: 500, Price: float(7.50)},
	}
	tier := ResolveProductTier(tiers, 600)
	if tier == nil || tier.Quantity != 500 {
		t.Fatalf("expected 500 tier regardless of slice order, got %+v", tier)
	}
}

func TestResolveProductTierIgnoresOptionTiers(t *testing.T) {
	tiers := []models.QuantityTier{
		{Quantity: 100, OptionID: "mat-gloss", PriceModifier: float(0.5)},
	}
	if tier := ResolveProductTier(tiers, 600); tier != nil {
		t.Fatalf("option tier must not act as a product tier, got %+v", tier)
	}
}

func TestUnitPriceTierReplacesBase(t *testing.T) {
	product := businessCards()
	tiers := []models.QuantityTier{
		{Quantity: 100, Price: float(9.00)},
		{Quantity: 500, Price: float(7.50)},
		{Quantity: 1000, Price: float(6.00)},
	}

	unit := UnitPrice(product, nil, nil, 600, tiers, time.Now())
	if unit != 7.50 {
		t.Fatalf("expected tier price 7.50 for quantity 600, got %v", unit)
	}

	// At the product minimum, tiers are not consulted.
	unit = UnitPrice(product, nil, nil, 50, tiers, time.Now())
	if unit != 10 {
		t.Fatalf("expected base price at minimum quantity, got %v", unit)
	}
}

func TestUnitPriceAddsOptionModifiers(t *testing.T) {
	product := businessCards()
	selected := map[string]string{
		"size":     "size-a3",
		"material": "mat-gloss",
	}

	unit := UnitPrice(product, selected, nil, 50, nil, time.Now())
	if unit != 10+2.5+1.25 {
		t.Fatalf("expected 13.75, got %v", unit)
	}
}

func TestUnitPriceIgnoresUnknownOptionIDs(t *testing.T) {
	product := businessCards()
	selected := map[string]string{
		"size":   "size-a3",
		"finish": "no-such-option",
		"nosuch": "whatever",
	}

	unit := UnitPrice(product, selected, nil, 50, nil, time.Now())
	if unit != 12.5 {
		t.Fatalf("unknown option ids must be skipped, got %v", unit)
	}
}

func TestUnitPriceCustomOptionModifiers(t *testing.T) {
	product := businessCards()
	custom := map[string]models.CustomOption{
		"rounded-corners": {Value: "yes", PriceModifier: 0.75},
		"design-note":     {Value: "شعار في الوسط"}, // no modifier
	}

	unit := UnitPrice(product, nil, custom, 50, nil, time.Now())
	if unit != 10.75 {
		t.Fatalf("expected 10.75, got %v", unit)
	}
}

func TestUnitPriceOptionTierReplacesOptionModifier(t *testing.T) {
	product := businessCards()
	selected := map[string]string{"material": "mat-gloss"}
	tiers := []models.QuantityTier{
		{Quantity: 500, OptionID: "mat-gloss", PriceModifier: float(0.40)},
	}

	unit := UnitPrice(product, selected, nil, 600, tiers, time.Now())
	if unit != 10.40 {
		t.Fatalf("expected option tier modifier 0.40, got %v", unit)
	}
}

func TestUnitPriceNegativeModifiersNotFloored(t *testing.T) {
	product := businessCards()
	custom := map[string]models.CustomOption{
		"broken-admin-data": {PriceModifier: -50},
	}
	unit := UnitPrice(product, nil, custom, 50, nil, time.Now())
	if unit != -40 {
		t.Fatalf("negative unit price must surface as-is, got %v", unit)
	}
}

func TestLineTotalRoundTrip(t *testing.T) {
	product := businessCards()
	selected := map[string]string{"size": "size-a3", "material": "mat-gloss"}
	quantity := 120

	unit := UnitPrice(product, selected, nil, quantity, nil, time.Now())
	line := LineTotal(unit, quantity)
	want := (10 + 2.5 + 1.25) * float64(quantity)
	if math.Abs(line-want) > 1e-9 {
		t.Fatalf("line total %v, want %v", line, want)
	}
}

func TestEffectiveBasePriceSaleWindow(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
	product := businessCards()
	product.SaleEnabled = true
	product.SalePrice = 8
	product.SaleStartAt = &start
	product.SaleEndAt = &end

	inside := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	if got := EffectiveBasePrice(product, inside); got != 8 {
		t.Fatalf("expected sale price inside window, got %v", got)
	}

	before := start.Add(-time.Hour)
	if got := EffectiveBasePrice(product, before); got != 10 {
		t.Fatalf("expected regular price before window, got %v", got)
	}

	after := end.Add(time.Hour)
	if got := EffectiveBasePrice(product, after); got != 10 {
		t.Fatalf("expected regular price after window, got %v", got)
	}
}

func TestEffectiveBasePriceSaleSanity(t *testing.T) {
	product := businessCards()
	product.SaleEnabled = true
	product.SalePrice = 12 // higher than base, not a sale

	if got := EffectiveBasePrice(product, time.Now()); got != 10 {
		t.Fatalf("sale price above base must be ignored, got %v", got)
	}
}

func TestCartTotals(t *testing.T) {
	totals := CartTotals([]float64{100, 100})
	if totals.Subtotal != 200 {
		t.Fatalf("expected subtotal 200, got %v", totals.Subtotal)
	}
	if totals.Tax != 30 {
		t.Fatalf("expected 15%% VAT of 30, got %v", totals.Tax)
	}
	if totals.Shipping != 0 {
		t.Fatalf("expected zero shipping, got %v", totals.Shipping)
	}
	if totals.Total != 230 {
		t.Fatalf("expected total 230, got %v", totals.Total)
	}
}
