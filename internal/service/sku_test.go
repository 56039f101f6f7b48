package service

import (
	"testing"

	"gemstock-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSKUPrefix(t *testing.T) {
	gen := NewSKUGenerator(0, "")

	prefix, err := gen.Prefix(
		model.FoundCode("EMR"), model.FoundCode("GLD"), model.FoundCode("GRN"),
		decimal.RequireFromString("2.5"))
	require.NoError(t, err)
	assert.Equal(t, "EMR-GLD-GRN-2.50-", prefix)
}

func TestSKUPrefixDeterministic(t *testing.T) {
	gen := NewSKUGenerator(0, "")
	weight := decimal.RequireFromString("1.337")

	first, err := gen.Prefix(model.FoundCode("RBY"), model.FoundCode("SLV"), model.FoundCode("RED"), weight)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := gen.Prefix(model.FoundCode("RBY"), model.FoundCode("SLV"), model.FoundCode("RED"), weight)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSKUPrefixWeightRounding(t *testing.T) {
	gen := NewSKUGenerator(0, "")

	tests := []struct {
		weight string
		want   string
	}{
		{"2.5", "2.50"},
		{"2.505", "2.51"},
		{"2.504", "2.50"},
		{"10", "10.00"},
		{"0.1", "0.10"},
	}
	for _, tt := range tests {
		prefix, err := gen.Prefix(model.FoundCode("EMR"), model.FoundCode("GLD"), model.FoundCode("GRN"),
			decimal.RequireFromString(tt.weight))
		require.NoError(t, err)
		assert.Equal(t, "EMR-GLD-GRN-"+tt.want+"-", prefix, "weight %s", tt.weight)
	}
}

func TestSKUPrefixFallback(t *testing.T) {
	gen := NewSKUGenerator(0, "")

	prefix, err := gen.Prefix(
		model.MissingCode(), model.FoundCode("GLD"), model.MissingCode(),
		decimal.RequireFromString("3"))
	require.NoError(t, err)
	assert.Equal(t, "XX-GLD-XX-3.00-", prefix)
}

func TestSKUPrefixCustomFallback(t *testing.T) {
	gen := NewSKUGenerator(0, "ZZ")

	prefix, err := gen.Prefix(
		model.MissingCode(), model.MissingCode(), model.MissingCode(),
		decimal.RequireFromString("0.25"))
	require.NoError(t, err)
	assert.Equal(t, "ZZ-ZZ-ZZ-0.25-", prefix)
}

func TestSKUPrefixNormalizesCase(t *testing.T) {
	gen := NewSKUGenerator(0, "")

	prefix, err := gen.Prefix(
		model.FoundCode("emr"), model.FoundCode(" gld "), model.FoundCode("grn"),
		decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.Equal(t, "EMR-GLD-GRN-1.00-", prefix)
}

func TestSKUPrefixRejectsBadCode(t *testing.T) {
	gen := NewSKUGenerator(0, "")
	weight := decimal.RequireFromString("1")

	bad := []model.CodeRef{
		model.FoundCode(""),
		model.FoundCode("TOOLONGCODE"),
		model.FoundCode("EM-R"),
		model.FoundCode("EM R"),
	}
	for _, ref := range bad {
		_, err := gen.Prefix(ref, model.FoundCode("GLD"), model.FoundCode("GRN"), weight)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", ref.Value)
	}
}

func TestSKUPrefixRejectsBadWeight(t *testing.T) {
	gen := NewSKUGenerator(0, "")

	for _, w := range []string{"0", "-1", "-0.01"} {
		_, err := gen.Prefix(model.FoundCode("EMR"), model.FoundCode("GLD"), model.FoundCode("GRN"),
			decimal.RequireFromString(w))
		assert.ErrorIs(t, err, ErrInvalidWeight, "weight %s", w)
	}
}

func TestSKUGeneratorDefaults(t *testing.T) {
	gen := NewSKUGenerator(0, "")
	assert.Equal(t, DefaultSuffixPadding, gen.Padding())

	gen = NewSKUGenerator(4, "NA")
	assert.Equal(t, 4, gen.Padding())
}
