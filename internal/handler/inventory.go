package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"
	"gemstock-api/internal/service"
	"gemstock-api/pkg/apierror"
	"gemstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles inventory-related HTTP requests.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// CreateItemRequest is the body of POST /api/v1/inventory. Code fragments
// left empty are treated as missed lookups and substituted with the
// configured fallback token when the SKU is built.
type CreateItemRequest struct {
	Name          string          `json:"name"`
	Shape         string          `json:"shape"`
	StockLocation string          `json:"stock_location"`
	CategoryCode  string          `json:"category_code"`
	MaterialCode  string          `json:"material_code"`
	ColorCode     string          `json:"color_code"`
	WeightValue   decimal.Decimal `json:"weight_value"`
	WeightUnit    string          `json:"weight_unit"`
	PricingMode   string          `json:"pricing_mode"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FlatPrice     decimal.Decimal `json:"flat_price"`
}

func codeRef(value string) model.CodeRef {
	if value == "" {
		return model.MissingCode()
	}
	return model.FoundCode(value)
}

// CreateItem handles POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	item, err := h.inventory.CreateItem(r.Context(), service.CreateItemInput{
		Name:          req.Name,
		Shape:         req.Shape,
		StockLocation: req.StockLocation,
		Category:      codeRef(req.CategoryCode),
		Material:      codeRef(req.MaterialCode),
		Color:         codeRef(req.ColorCode),
		WeightValue:   req.WeightValue,
		WeightUnit:    req.WeightUnit,
		PricingMode:   model.PricingMode(req.PricingMode),
		RatePerUnit:   req.RatePerUnit,
		FlatPrice:     req.FlatPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPricingMode),
			errors.Is(err, service.ErrInvalidCode),
			errors.Is(err, service.ErrInvalidWeight):
			response.Error(w, apierror.BadRequest(err.Error()))
		case errors.Is(err, repository.ErrSKUAllocationFailed):
			response.Error(w, apierror.ServiceUnavailable("sku allocation failed, item not created"))
		default:
			response.Error(w, err)
		}
		return
	}

	response.Created(w, item)
}

// GetItem handles GET /api/v1/inventory/{sku}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		response.Error(w, apierror.BadRequest("sku is required"))
		return
	}

	item, err := h.inventory.GetBySKU(r.Context(), sku)
	if err != nil {
		response.Error(w, err)
		return
	}
	if item == nil {
		response.Error(w, apierror.NotFound("inventory item not found"))
		return
	}

	response.OK(w, item)
}

// UpdatePricingRequest is the body of PUT /api/v1/inventory/{sku}/pricing.
type UpdatePricingRequest struct {
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	FlatPrice   decimal.Decimal `json:"flat_price"`
}

// UpdatePricing handles PUT /api/v1/inventory/{sku}/pricing
func (h *InventoryHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	if sku == "" {
		response.Error(w, apierror.BadRequest("sku is required"))
		return
	}

	var req UpdatePricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	if err := h.inventory.UpdatePricing(r.Context(), sku, req.RatePerUnit, req.FlatPrice); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]string{"sku": sku, "status": "updated"})
}
