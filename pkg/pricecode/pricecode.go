// Package pricecode implements the MOD-9 price tag encoding used on printed
// labels. The encoding is a staff-reversible obfuscation: the integer rupee
// amount followed by a single check digit, so a tag can be read back by
// stripping the last digit while casual misreads are caught by the checksum.
package pricecode

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MethodMOD9 identifies the digit-sum-mod-9 checksum scheme.
const MethodMOD9 = "MOD9"

// Version is the current encoding version. Historical print-job lines carry
// the version they were encoded with, so changing this never rewrites an old
// tag on reprint.
const Version = 1

// ErrInvalidAmount is returned when a negative amount is passed to Encode.
var ErrInvalidAmount = errors.New("pricecode: amount must be non-negative")

// ErrBadEncoding is returned by Decode when the input is not a valid
// MOD-9 encoded string.
var ErrBadEncoding = errors.New("pricecode: malformed encoded string")

// EncodedPrice is the result of encoding one price. It is a pure value:
// two calls with the same amount and version always produce the same result.
type EncodedPrice struct {
	Amount        decimal.Decimal `json:"amount"`
	EncodedString string          `json:"encoded_string"`
	ChecksumDigit int             `json:"checksum_digit"`
	Method        string          `json:"method"`
	Version       int             `json:"version"`
}

// Encode converts a non-negative price into its printed representation.
// The fractional part of the amount is ignored; tags carry whole rupees.
func Encode(amount decimal.Decimal) (EncodedPrice, error) {
	return EncodeVersion(amount, Version)
}

// EncodeVersion encodes with an explicit scheme version. Only version 1 is
// defined; unknown versions are rejected rather than silently falling back,
// so a future scheme change cannot corrupt historical replays.
func EncodeVersion(amount decimal.Decimal, version int) (EncodedPrice, error) {
	if version != 1 {
		return EncodedPrice{}, fmt.Errorf("pricecode: unsupported version %d", version)
	}
	if amount.IsNegative() {
		return EncodedPrice{}, ErrInvalidAmount
	}

	digits := amount.Truncate(0).BigInt().String()
	check := checksum(digits)

	return EncodedPrice{
		Amount:        amount,
		EncodedString: digits + string(rune('0'+check)),
		ChecksumDigit: check,
		Method:        MethodMOD9,
		Version:       version,
	}, nil
}

// Decode recovers the rupee amount from an encoded string, verifying the
// trailing check digit. The returned amount is always a whole number.
func Decode(encoded string) (decimal.Decimal, error) {
	if len(encoded) < 2 {
		return decimal.Zero, ErrBadEncoding
	}
	for _, r := range encoded {
		if r < '0' || r > '9' {
			return decimal.Zero, ErrBadEncoding
		}
	}

	digits := encoded[:len(encoded)-1]
	check := int(encoded[len(encoded)-1] - '0')
	if checksum(digits) != check {
		return decimal.Zero, fmt.Errorf("%w: checksum mismatch", ErrBadEncoding)
	}

	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, ErrBadEncoding
	}
	return amount, nil
}

// checksum computes the digit-sum mod 9 of a decimal digit string, with 0
// mapped to 9. The check digit is therefore never 0, which avoids ambiguity
// with a leading or trailing zero on the printed tag.
func checksum(digits string) int {
	sum := 0
	for _, r := range digits {
		sum += int(r - '0')
	}
	if c := sum % 9; c != 0 {
		return c
	}
	return 9
}
