// Package money implements fixed-point monetary arithmetic. Every amount in
// the system is an int64 count of 10^-8 units; no component performs
// floating-point money math.
package money

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/currexhq/ledger/internal/apperr"
)

// Scale is the fixed-point scale factor: amounts carry 8 decimal digits.
const Scale int64 = 100_000_000

const scaleDigits = 8

var (
	// ErrDivisionByZero carries its own taxonomy kind so callers surface a
	// stable code instead of INTERNAL.
	ErrDivisionByZero = apperr.New(apperr.KindDivisionByZero, "money: division by zero")
	ErrOutOfRange     = errors.New("money: value out of int64 range")
)

var bigScale = big.NewInt(Scale)

// FromDecimal converts a human decimal value into scaled units, rounding
// half-up (away from zero) at the 8th decimal place.
func FromDecimal(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(scaleDigits).Round(0)
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, ErrOutOfRange
	}
	return bi.Int64(), nil
}

// Parse converts an external decimal string (e.g. a price-feed value) into
// scaled units with the same rounding rule as FromDecimal.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return FromDecimal(d)
}

// Format renders a scaled value with exactly 8 fractional digits, zero
// padded. The sign prefixes the whole value: Format(-150000000) == "-1.50000000".
func Format(v int64) string {
	sign := ""
	u := uint64(v)
	if v < 0 {
		sign = "-"
		u = uint64(-v) // two's complement: correct for MinInt64 as well
	}
	return fmt.Sprintf("%s%d.%08d", sign, u/uint64(Scale), u%uint64(Scale))
}

// Mul returns floor(a*b/Scale). The product is computed in a big.Int so the
// intermediate cannot wrap; ErrOutOfRange when the quotient itself does not
// fit in int64.
func Mul(a, b int64) (int64, error) {
	p := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	p.Div(p, bigScale)
	if !p.IsInt64() {
		return 0, ErrOutOfRange
	}
	return p.Int64(), nil
}

// Div returns floor(a*Scale/b); ErrDivisionByZero when b == 0, ErrOutOfRange
// when the quotient does not fit in int64.
func Div(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	p := new(big.Int).Mul(big.NewInt(a), bigScale)
	p.Div(p, big.NewInt(b))
	if !p.IsInt64() {
		return 0, ErrOutOfRange
	}
	return p.Int64(), nil
}
