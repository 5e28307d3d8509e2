package handlers

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	err := validateSaleFields(100, true, 0, false)
	if err == nil {
		t.Fatal("expected validation error when saleEnabled=true and salePrice is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualBasePrice(t *testing.T) {
	tests := []float64{100, 120}
	for _, salePrice := range tests {
		err := validateSaleFields(100, true, salePrice, true)
		if err == nil {
			t.Fatalf("expected validation error for salePrice=%v", salePrice)
		}
	}
}

func TestValidateSaleWindowRejectsInvertedRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	if err := validateSaleWindow(&start, &end); err == nil {
		t.Fatal("expected error for saleStartAt after saleEndAt")
	}
	if err := validateSaleWindow(&start, nil); err != nil {
		t.Fatalf("open-ended window should be valid: %v", err)
	}
}

func TestResolveSaleUpdateDisableClearsSalePrice(t *testing.T) {
	disabled := false
	result, err := resolveSaleUpdate(100, true, 80, saleUpdateInput{SaleEnabled: &disabled})
	if err != nil {
		t.Fatalf("resolveSaleUpdate returned error: %v", err)
	}
	if !result.SetSalePrice || result.SalePrice != 0 {
		t.Fatalf("expected sale price cleared on disable, got %+v", result)
	}
}

func TestNormalizeProductDocumentIncludesSaleFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "بطاقات عمل",
		"basePrice":   100.0,
		"saleEnabled": true,
		"salePrice":   80.0,
		"minQuantity": 100,
		"category":    []string{"بطاقات"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if !product.SaleEnabled || product.SalePrice != 80 {
		t.Fatalf("expected sale fields to be preserved, got saleEnabled=%v salePrice=%v", product.SaleEnabled, product.SalePrice)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
}

func TestNormalizeProductDocumentLegacyShapes(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "مطويات",
		"basePrice":   2.5,
		"category":    "مطبوعات",
		"minQuantity": int32(50),
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if len(product.Category) != 1 || product.Category[0] != "مطبوعات" {
		t.Fatalf("expected legacy string category to become a list, got %v", product.Category)
	}
	if product.MinQuantity != 50 {
		t.Fatalf("expected minQuantity 50, got %d", product.MinQuantity)
	}
}

func TestProductJSONAlwaysIncludesSalePrice(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"basePrice":   120.0,
		"saleEnabled": true,
		"salePrice":   99.0,
		"minQuantity": 1,
		"category":    []string{"ملصقات"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, "\"salePrice\":99") {
		t.Fatalf("expected salePrice in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"isOnSale\":true") {
		t.Fatalf("expected isOnSale=true in response json, got %s", jsonBody)
	}
}
