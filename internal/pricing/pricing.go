// Package pricing computes unit prices, line totals and cart totals for
// configurable print products. All functions are pure: they operate on
// already-loaded catalog data and never touch the database, so the order
// handler can recompute authoritative prices inside its transaction.
package pricing

import (
	"time"

	"printshop/internal/models"
)

const (
	// VATRate is the fixed Saudi VAT applied on the cart subtotal.
	VATRate = 0.15

	// Currency for all storefront amounts.
	Currency = "SAR"
)

// saleActive reports whether the discounted price applies right now. The
// optional date window bounds seasonal offers; products without a window are
// on sale whenever the flag and price are valid.
func saleActive(p models.Product, now time.Time) bool {
	if !p.SaleEnabled || p.SalePrice <= 0 || p.SalePrice >= p.BasePrice {
		return false
	}
	if p.SaleStartAt != nil && now.Before(*p.SaleStartAt) {
		return false
	}
	if p.SaleEndAt != nil && now.After(*p.SaleEndAt) {
		return false
	}
	return true
}

// EffectiveBasePrice returns the sale price while an offer window is active,
// otherwise the regular base price.
func EffectiveBasePrice(p models.Product, now time.Time) float64 {
	if saleActive(p, now) {
		return p.SalePrice
	}
	return p.BasePrice
}

// IsOnSale is the display variant of saleActive for product listings.
func IsOnSale(p models.Product, now time.Time) bool {
	return saleActive(p, now)
}

// ResolveProductTier picks the product-level tier with the highest threshold
// not exceeding the selected quantity. Ties on qualification break toward the
// highest threshold, never first-match.
func ResolveProductTier(tiers []models.QuantityTier, quantity int) *models.QuantityTier {
	var best *models.QuantityTier
	for i := range tiers {
		tier := &tiers[i]
		if tier.OptionID != "" || tier.Quantity > quantity {
			continue
		}
		if best == nil || tier.Quantity > best.Quantity {
			best = tier
		}
	}
	return best
}

// resolveOptionTier picks the qualifying tier bound to a specific option id,
// with the same highest-threshold rule.
func resolveOptionTier(tiers []models.QuantityTier, optionID string, quantity int) *models.QuantityTier {
	var best *models.QuantityTier
	for i := range tiers {
		tier := &tiers[i]
		if tier.OptionID != optionID || tier.Quantity > quantity {
			continue
		}
		if best == nil || tier.Quantity > best.Quantity {
			best = tier
		}
	}
	return best
}

// UnitPrice resolves the price of one unit for a configured line item:
//
//  1. start from the effective base price (sale window folded in);
//  2. when the quantity exceeds the product minimum, a qualifying
//     product-level tier price replaces the base before options apply;
//  3. add each selected option's modifier (an option-level tier replaces the
//     option's own modifier); unknown slot or option ids are skipped;
//  4. add each custom-option modifier.
//
// The result is not floored at zero: deeply negative admin-configured
// modifiers surface as-is so bad catalog data stays visible.
func UnitPrice(p models.Product, selected map[string]string, custom map[string]models.CustomOption, quantity int, tiers []models.QuantityTier, now time.Time) float64 {
	unit := EffectiveBasePrice(p, now)

	if quantity > p.MinQuantity {
		if tier := ResolveProductTier(tiers, quantity); tier != nil && tier.Price != nil {
			unit = *tier.Price
		}
	}

	for slotID, optionID := range selected {
		opt, ok := p.FindOption(slotID, optionID)
		if !ok {
			continue
		}
		modifier := opt.PriceModifier
		if tier := resolveOptionTier(tiers, optionID, quantity); tier != nil && tier.PriceModifier != nil {
			modifier = *tier.PriceModifier
		}
		unit += modifier
	}

	for _, entry := range custom {
		unit += entry.PriceModifier
	}

	return unit
}

// LineTotal is the resolved unit price times the quantity.
func LineTotal(unitPrice float64, quantity int) float64 {
	return unitPrice * float64(quantity)
}

// Totals aggregates a cart. Shipping is currently always zero; it is quoted
// at delivery time.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// CartTotals sums line totals and applies the fixed VAT rate.
func CartTotals(lineTotals []float64) Totals {
	totals := Totals{}
	for _, line := range lineTotals {
		totals.Subtotal += line
	}
	totals.Tax = totals.Subtotal * VATRate
	totals.Total = totals.Subtotal + totals.Tax + totals.Shipping
	return totals
}
