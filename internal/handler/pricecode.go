package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"gemstock-api/pkg/apierror"
	"gemstock-api/pkg/pricecode"
	"gemstock-api/pkg/response"

	"github.com/shopspring/decimal"
)

// PriceCodeHandler exposes the MOD-9 encoder as staff tooling: the UI uses
// it to preview tag codes and to read a price back from a scanned tag.
type PriceCodeHandler struct{}

// NewPriceCodeHandler creates a new price code handler.
func NewPriceCodeHandler() *PriceCodeHandler {
	return &PriceCodeHandler{}
}

// EncodeRequest is the body of POST /api/v1/pricecode/encode.
type EncodeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Encode handles POST /api/v1/pricecode/encode
func (h *PriceCodeHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	encoded, err := pricecode.Encode(req.Amount)
	if err != nil {
		if errors.Is(err, pricecode.ErrInvalidAmount) {
			response.Error(w, apierror.BadRequest("amount must be non-negative"))
			return
		}
		response.Error(w, err)
		return
	}

	response.OK(w, encoded)
}

// DecodeRequest is the body of POST /api/v1/pricecode/decode.
type DecodeRequest struct {
	EncodedString string `json:"encoded_string"`
}

// Decode handles POST /api/v1/pricecode/decode
func (h *PriceCodeHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON body"))
		return
	}

	amount, err := pricecode.Decode(req.EncodedString)
	if err != nil {
		response.Error(w, apierror.BadRequest("not a valid encoded price"))
		return
	}

	response.OK(w, map[string]interface{}{
		"encoded_string": req.EncodedString,
		"amount":         amount,
	})
}
