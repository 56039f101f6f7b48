package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingMode selects how the label price of an item is computed.
type PricingMode string

const (
	// PricingPerCarat prices the item as rate-per-unit times weight.
	PricingPerCarat PricingMode = "PER_CARAT"

	// PricingFlat prices the item with a single flat amount.
	PricingFlat PricingMode = "FLAT"
)

// Valid reports whether the mode is one of the defined pricing modes.
func (m PricingMode) Valid() bool {
	return m == PricingPerCarat || m == PricingFlat
}

// InventoryItem is one gemstone inventory record. The print subsystem only
// reads these at job-creation time; the SKU is assigned once when the row is
// created and never changes afterwards.
type InventoryItem struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Shape         string          `json:"shape,omitempty"`
	StockLocation string          `json:"stock_location,omitempty"`
	CategoryCode  string          `json:"category_code"`
	MaterialCode  string          `json:"material_code"`
	ColorCode     string          `json:"color_code"`
	WeightValue   decimal.Decimal `json:"weight_value"`
	WeightUnit    string          `json:"weight_unit"`
	PricingMode   PricingMode     `json:"pricing_mode"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FlatPrice     decimal.Decimal `json:"flat_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LabelPrice returns the amount to print on this item's tag.
// PER_CARAT items are always rate x weight. FLAT items use the flat price,
// but fall back to rate x weight when the flat price was never entered --
// incomplete data entry is common and must not produce a zero-rupee tag.
func (it *InventoryItem) LabelPrice() decimal.Decimal {
	rateTotal := it.RatePerUnit.Mul(it.WeightValue)
	if it.PricingMode == PricingPerCarat {
		return rateTotal
	}
	if it.FlatPrice.IsZero() {
		return rateTotal
	}
	return it.FlatPrice
}

// CodeRef is the result of a category/material/color code lookup performed by
// the caller. Lookups that miss must be represented explicitly so the SKU
// generator can be handed a fallback token instead of defaulting deep inside
// the call chain.
type CodeRef struct {
	Value string
	Found bool
}

// FoundCode wraps a resolved code.
func FoundCode(value string) CodeRef { return CodeRef{Value: value, Found: true} }

// MissingCode marks a lookup that found nothing.
func MissingCode() CodeRef { return CodeRef{} }

// OrFallback returns the resolved code, or the fallback token when the
// lookup missed.
func (c CodeRef) OrFallback(fallback string) string {
	if c.Found {
		return c.Value
	}
	return fallback
}
