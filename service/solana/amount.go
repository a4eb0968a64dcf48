package solana

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the decimal precision of native SOL (1 SOL = 1e9 lamports).
const NativeDecimals uint8 = 9

// plainDecimalRe accepts an optionally-fractional decimal number and nothing
// else. Scientific notation and thousands separators are rejected up front;
// decimal.NewFromString would happily accept "1e9".
var plainDecimalRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseAmount parses a human-unit amount string into an exact decimal.
// Fails with *InvalidAmountError unless the input is a plain, positive
// decimal number.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if !plainDecimalRe.MatchString(raw) {
		return decimal.Decimal{}, &InvalidAmountError{Raw: raw}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, &InvalidAmountError{Raw: raw}
	}
	return d, nil
}

// ToBaseUnits converts a human-unit amount to the token's base units,
// scaling by 10^decimals and rounding down. The arithmetic is exact: an
// amount like "92233720368.54775807" with 9 decimals would lose precision
// in IEEE-754 doubles but converts exactly here.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) (uint64, error) {
	scaled := amount.Shift(int32(decimals)).Floor()
	bi := scaled.BigInt()
	if bi.Sign() <= 0 {
		return 0, &InvalidAmountError{Raw: amount.String()}
	}
	if !bi.IsUint64() {
		return 0, &InvalidAmountError{Raw: amount.String()}
	}
	return bi.Uint64(), nil
}

// ParseAmountToBaseUnits is the common two-step: parse then scale.
func ParseAmountToBaseUnits(raw string, decimals uint8) (uint64, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return 0, err
	}
	return ToBaseUnits(d, decimals)
}
