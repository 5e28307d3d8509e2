package handlers

import (
	"fmt"
	"time"
)

type saleUpdateInput struct {
	BasePrice   *float64
	SaleEnabled *bool
	SalePrice   *float64
	SaleStartAt *time.Time
	SaleEndAt   *time.Time
}

type saleUpdateResult struct {
	BasePrice      float64
	SaleEnabled    bool
	SalePrice      float64
	SetSaleEnabled bool
	SetSalePrice   bool
}

func validateSaleFields(basePrice float64, saleEnabled bool, salePrice float64, salePriceSet bool) error {
	if !saleEnabled {
		return nil
	}
	if !salePriceSet {
		return fmt.Errorf("salePrice is required when saleEnabled is true")
	}
	if salePrice <= 0 {
		return fmt.Errorf("salePrice must be greater than 0")
	}
	if salePrice >= basePrice {
		return fmt.Errorf("salePrice must be less than basePrice")
	}
	return nil
}

func validateSaleWindow(startAt, endAt *time.Time) error {
	if startAt != nil && endAt != nil && !startAt.Before(*endAt) {
		return fmt.Errorf("saleStartAt must be before saleEndAt")
	}
	return nil
}

// resolveSaleUpdate merges a partial sale update onto the stored values and
// validates the combined state. Disabling the sale clears the sale price so a
// later re-enable cannot resurrect a stale discount.
func resolveSaleUpdate(existingBasePrice float64, existingSaleEnabled bool, existingSalePrice float64, input saleUpdateInput) (saleUpdateResult, error) {
	result := saleUpdateResult{
		BasePrice:   existingBasePrice,
		SaleEnabled: existingSaleEnabled,
		SalePrice:   existingSalePrice,
	}

	if input.BasePrice != nil {
		result.BasePrice = *input.BasePrice
	}

	salePriceSetForValidation := existingSalePrice > 0

	if input.SaleEnabled != nil {
		result.SaleEnabled = *input.SaleEnabled
		result.SetSaleEnabled = true
		if !*input.SaleEnabled {
			result.SalePrice = 0
			result.SetSalePrice = true
			salePriceSetForValidation = false
		}
	}

	if input.SalePrice != nil {
		result.SalePrice = *input.SalePrice
		result.SetSalePrice = true
		salePriceSetForValidation = true
	}

	if err := validateSaleWindow(input.SaleStartAt, input.SaleEndAt); err != nil {
		return saleUpdateResult{}, err
	}

	if err := validateSaleFields(result.BasePrice, result.SaleEnabled, result.SalePrice, salePriceSetForValidation); err != nil {
		return saleUpdateResult{}, err
	}

	return result, nil
}
