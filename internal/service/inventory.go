package service

import (
	"context"
	"errors"
	"fmt"

	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"

	"github.com/shopspring/decimal"
)

// ErrInvalidPricingMode is returned for an unknown pricing mode.
var ErrInvalidPricingMode = errors.New("invalid pricing mode")

// InventoryService handles inventory creation and lookup. Creation is where
// the SKU contract lives: the prefix is built here, and the repository
// allocates the uniqueness suffix inside the same transaction as the row
// insert, so no item can ever be persisted without a SKU.
type InventoryService struct {
	repo repository.InventoryRepository
	sku  *SKUGenerator
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.InventoryRepository, sku *SKUGenerator) *InventoryService {
	if repo == nil {
		return nil
	}
	if sku == nil {
		sku = NewSKUGenerator(0, "")
	}
	return &InventoryService{repo: repo, sku: sku}
}

// CreateItemInput carries the fields of a new inventory item. The three code
// fragments arrive as explicit lookup results: a missed lookup must be
// visible here so the fallback substitution happens in exactly one place.
type CreateItemInput struct {
	Name          string
	Shape         string
	StockLocation string
	Category      model.CodeRef
	Material      model.CodeRef
	Color         model.CodeRef
	WeightValue   decimal.Decimal
	WeightUnit    string
	PricingMode   model.PricingMode
	RatePerUnit   decimal.Decimal
	FlatPrice     decimal.Decimal
}

// CreateItem validates the input, builds the SKU prefix and persists the
// item with its freshly allocated SKU. On any failure the whole creation is
// rolled back; there is no partially created item to clean up.
func (s *InventoryService) CreateItem(ctx context.Context, in CreateItemInput) (*model.InventoryItem, error) {
	if !in.PricingMode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPricingMode, in.PricingMode)
	}
	if in.RatePerUnit.IsNegative() || in.FlatPrice.IsNegative() {
		return nil, errors.New("pricing fields must be non-negative")
	}

	prefix, err := s.sku.Prefix(in.Category, in.Material, in.Color, in.WeightValue)
	if err != nil {
		return nil, err
	}

	item := &model.InventoryItem{
		Name:          in.Name,
		Shape:         in.Shape,
		StockLocation: in.StockLocation,
		CategoryCode:  in.Category.OrFallback(DefaultFallbackCode),
		MaterialCode:  in.Material.OrFallback(DefaultFallbackCode),
		ColorCode:     in.Color.OrFallback(DefaultFallbackCode),
		WeightValue:   in.WeightValue,
		WeightUnit:    in.WeightUnit,
		PricingMode:   in.PricingMode,
		RatePerUnit:   in.RatePerUnit,
		FlatPrice:     in.FlatPrice,
	}

	if _, err := s.repo.CreateItem(ctx, item, prefix, s.sku.Padding()); err != nil {
		return nil, err
	}
	return item, nil
}

// GetBySKU retrieves an item by SKU. Returns (nil, nil) when absent.
func (s *InventoryService) GetBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	return s.repo.GetItemBySKU(ctx, sku)
}

// GetByID retrieves an item by row ID. Returns (nil, nil) when absent.
func (s *InventoryService) GetByID(ctx context.Context, id int64) (*model.InventoryItem, error) {
	return s.repo.GetItemByID(ctx, id)
}

// UpdatePricing changes an item's pricing fields. Print-job lines created
// before the change keep their original amounts.
func (s *InventoryService) UpdatePricing(ctx context.Context, sku string, ratePerUnit, flatPrice decimal.Decimal) error {
	if ratePerUnit.IsNegative() || flatPrice.IsNegative() {
		return errors.New("pricing fields must be non-negative")
	}
	return s.repo.UpdateItemPricing(ctx, sku, ratePerUnit, flatPrice)
}
