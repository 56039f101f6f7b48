package pricecode

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeReferenceScenario(t *testing.T) {
	// 1299 -> digit sum 21 -> 21 mod 9 = 3 -> "12993"
	ep, err := Encode(decimal.NewFromInt(1299))
	require.NoError(t, err)

	assert.Equal(t, "12993", ep.EncodedString)
	assert.Equal(t, 3, ep.ChecksumDigit)
	assert.Equal(t, MethodMOD9, ep.Method)
	assert.Equal(t, 1, ep.Version)
}

func TestEncodeChecksumNeverZero(t *testing.T) {
	for amount := int64(0); amount <= 2000; amount++ {
		ep, err := Encode(decimal.NewFromInt(amount))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ep.ChecksumDigit, 1, "amount %d", amount)
		assert.LessOrEqual(t, ep.ChecksumDigit, 9, "amount %d", amount)
	}
}

func TestEncodeZeroMapsToNine(t *testing.T) {
	// digit sum 0 mod 9 = 0 -> check digit 9
	ep, err := Encode(decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "09", ep.EncodedString)
	assert.Equal(t, 9, ep.ChecksumDigit)

	// digit sum 9 mod 9 = 0 -> check digit 9 as well
	ep, err = Encode(decimal.NewFromInt(900))
	require.NoError(t, err)
	assert.Equal(t, "9009", ep.EncodedString)
	assert.Equal(t, 9, ep.ChecksumDigit)
}

func TestEncodeDeterministic(t *testing.T) {
	amount := decimal.NewFromInt(51750)
	first, err := Encode(amount)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Encode(amount)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEncodeTruncatesFraction(t *testing.T) {
	ep, err := Encode(decimal.RequireFromString("1299.75"))
	require.NoError(t, err)
	assert.Equal(t, "12993", ep.EncodedString)
}

func TestEncodeRejectsNegative(t *testing.T) {
	_, err := Encode(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestEncodeRejectsUnknownVersion(t *testing.T) {
	_, err := EncodeVersion(decimal.NewFromInt(100), 2)
	assert.Error(t, err)
}

func TestDecodeRoundTrip(t *testing.T) {
	amounts := []int64{0, 1, 9, 42, 800, 1250, 1299, 99999, 123456789}
	for _, a := range amounts {
		ep, err := Encode(decimal.NewFromInt(a))
		require.NoError(t, err)

		got, err := Decode(ep.EncodedString)
		require.NoError(t, err, "amount %d", a)
		assert.True(t, got.Equal(decimal.NewFromInt(a)), "amount %d decoded as %s", a, got)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	cases := []string{"", "5", "12994", "12a93", "ninety"}
	for _, c := range cases {
		_, err := Decode(c)
		assert.ErrorIs(t, err, ErrBadEncoding, "input %q", c)
	}
}

func TestDecodeCatchesSingleDigitMisread(t *testing.T) {
	ep, err := Encode(decimal.NewFromInt(1299))
	require.NoError(t, err)

	// Flip one payload digit; the check digit no longer matches unless the
	// change is a multiple of 9 (inherent MOD-9 limitation).
	_, err = Decode("12893") // 9 -> 8 in the third position
	assert.Error(t, err)
	_, err = Decode(ep.EncodedString)
	assert.NoError(t, err)
}
