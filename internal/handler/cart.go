package handler

import (
	"encoding/json"
	"net/http"

	"gemstock-api/internal/cache"
	"gemstock-api/pkg/apierror"
	"gemstock-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CartHandler handles the pending-label cart HTTP requests.
type CartHandler struct {
	cart cache.Cart
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart cache.Cart) *CartHandler {
	return &CartHandler{cart: cart}
}

// CartRequest is the body of cart add/remove requests.
type CartRequest struct {
	InventoryIDs []int64 `json:"inventory_ids"`
}

// List handles GET /api/v1/cart/{user_id}
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apierror.BadRequest("user_id is required"))
		return
	}

	ids, err := h.cart.List(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	response.OK(w, map[string]interface{}{
		"user_id":       userID,
		"inventory_ids": ids,
	})
}

// Add handles POST /api/v1/cart/{user_id}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apierror.BadRequest("user_id is required"))
		return
	}

	var req CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}
	if len(req.InventoryIDs) == 0 {
		response.Error(w, apierror.BadRequest("inventory_ids must not be empty"))
		return
	}

	if err := h.cart.Add(r.Context(), userID, req.InventoryIDs...); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id": userID,
		"added":   len(req.InventoryIDs),
	})
}

// Remove handles DELETE /api/v1/cart/{user_id}
// With a body it removes the listed items; without, it clears the cart.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apierror.BadRequest("user_id is required"))
		return
	}

	var req CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.InventoryIDs) == 0 {
		if err := h.cart.Clear(r.Context(), userID); err != nil {
			response.Error(w, err)
			return
		}
		response.NoContent(w)
		return
	}

	if err := h.cart.RemoveMany(r.Context(), userID, req.InventoryIDs); err != nil {
		response.Error(w, err)
		return
	}

	response.NoContent(w)
}
