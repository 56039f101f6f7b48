package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gemstock-api/internal/model"

	"github.com/shopspring/decimal"
)

const (
	// DefaultSuffixPadding is the zero-padded width of the SKU uniqueness
	// suffix. Six digits covers the realistic lifetime of one store.
	DefaultSuffixPadding = 6

	// DefaultFallbackCode replaces a code fragment whose lookup missed.
	DefaultFallbackCode = "XX"
)

// ErrInvalidCode is returned when a code fragment is not a short uppercase
// alphanumeric token after fallback substitution.
var ErrInvalidCode = errors.New("invalid sku code fragment")

// ErrInvalidWeight is returned for non-positive item weights.
var ErrInvalidWeight = errors.New("weight must be positive")

var codeTokenRe = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)

// SKUGenerator builds the deterministic prefix of a SKU. The uniqueness
// suffix itself is allocated by the repository inside the inventory-creation
// transaction; this type owns only the pure formatting and validation.
type SKUGenerator struct {
	padding  int
	fallback string
}

// NewSKUGenerator creates a generator. Zero padding or an empty fallback
// select the defaults.
func NewSKUGenerator(padding int, fallback string) *SKUGenerator {
	if padding <= 0 {
		padding = DefaultSuffixPadding
	}
	if fallback == "" {
		fallback = DefaultFallbackCode
	}
	return &SKUGenerator{padding: padding, fallback: fallback}
}

// Padding returns the suffix width.
func (g *SKUGenerator) Padding() int { return g.padding }

// Prefix builds the deterministic SKU prefix from the three resolved code
// fragments and the item weight. Lookups that missed are substituted with
// the fallback token; the weight fragment is the weight rounded to two
// decimals. Example: "EMR-GLD-GRN-2.50-".
func (g *SKUGenerator) Prefix(category, material, color model.CodeRef, weight decimal.Decimal) (string, error) {
	if !weight.IsPositive() {
		return "", ErrInvalidWeight
	}

	fragments := make([]string, 0, 4)
	for _, ref := range []model.CodeRef{category, material, color} {
		token := strings.ToUpper(strings.TrimSpace(ref.OrFallback(g.fallback)))
		if !codeTokenRe.MatchString(token) {
			return "", fmt.Errorf("%w: %q", ErrInvalidCode, token)
		}
		fragments = append(fragments, token)
	}
	fragments = append(fragments, weight.Round(2).StringFixed(2))

	return strings.Join(fragments, "-") + "-", nil
}
