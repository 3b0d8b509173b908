package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/currexhq/ledger/internal/apperr"
)

func mustFromDecimal(t *testing.T, s string) int64 {
	t.Helper()
	v, err := FromDecimal(decimal.RequireFromString(s))
	require.NoError(t, err)
	return v
}

func TestFromDecimal(t *testing.T) {
	require.Equal(t, int64(150_000_000), mustFromDecimal(t, "1.5"))
	require.Equal(t, int64(1), mustFromDecimal(t, "0.00000001"))
	require.Equal(t, int64(0), mustFromDecimal(t, "0"))
	require.Equal(t, int64(-150_000_000), mustFromDecimal(t, "-1.5"))

	// round-half-up at the 9th digit
	require.Equal(t, int64(2), mustFromDecimal(t, "0.000000015"))
	require.Equal(t, int64(1), mustFromDecimal(t, "0.000000014"))
	require.Equal(t, int64(-2), mustFromDecimal(t, "-0.000000015"))
}

func TestFromDecimalOutOfRange(t *testing.T) {
	_, err := FromDecimal(decimal.RequireFromString("100000000000"))
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestNoDriftAgainstBinaryFloats(t *testing.T) {
	// the classic 0.1 + 0.2 case must be exact in scaled space
	sum := mustFromDecimal(t, "0.1") + mustFromDecimal(t, "0.2")
	require.Equal(t, mustFromDecimal(t, "0.3"), sum)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "1.50000000", Format(150_000_000))
	require.Equal(t, "0.00000000", Format(0))
	require.Equal(t, "0.00000001", Format(1))
	require.Equal(t, "5000.00000000", Format(500_000_000_000))

	// sign prefixes the whole value
	require.Equal(t, "-1.50000000", Format(-150_000_000))
	require.Equal(t, "-0.00000001", Format(-1))

	require.Equal(t, "92233720368.54775807", Format(math.MaxInt64))
	require.Equal(t, "-92233720368.54775808", Format(math.MinInt64))
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"0.00000000", "1.00000000", "0.10000000", "123.45678901",
		"5000.00000000", "-1.50000000", "0.00000001",
	} {
		require.Equal(t, s, Format(mustFromDecimal(t, s)))
	}
}

func TestParse(t *testing.T) {
	v, err := Parse("42000.5")
	require.NoError(t, err)
	require.Equal(t, int64(4_200_050_000_000), v)

	_, err = Parse("not-a-number")
	require.Error(t, err)
}

func mustMul(t *testing.T, a, b int64) int64 {
	t.Helper()
	v, err := Mul(a, b)
	require.NoError(t, err)
	return v
}

func TestMul(t *testing.T) {
	// 1.5 * 2.0 = 3.0
	require.Equal(t, int64(300_000_000), mustMul(t, 150_000_000, 200_000_000))
	// 5 * 42000.5 = 210002.5
	require.Equal(t, int64(21_000_250_000_000), mustMul(t, 500_000_000, 4_200_050_000_000))
	// truncation toward floor: 0.00000001 * 0.1 = 0.000000001 -> 0
	require.Equal(t, int64(0), mustMul(t, 1, 10_000_000))

	// intermediate wider than 64 bits, quotient still in range
	big := int64(9_000_000_000_000_000_000 / Scale * Scale)
	require.Equal(t, big, mustMul(t, big, Scale))
}

func TestMulOutOfRange(t *testing.T) {
	// 80e9 base units * 42000 price: the scaled quotient exceeds int64
	_, err := Mul(8_000_000_000_000_000_000, 4_200_000_000_000)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = Mul(math.MinInt64, 4_200_000_000_000)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestDiv(t *testing.T) {
	// 3.0 / 2.0 = 1.5
	v, err := Div(300_000_000, 200_000_000)
	require.NoError(t, err)
	require.Equal(t, int64(150_000_000), v)

	// 1.0 / 3.0 floors
	v, err = Div(100_000_000, 300_000_000)
	require.NoError(t, err)
	require.Equal(t, int64(33_333_333), v)

	_, err = Div(100_000_000, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)
	require.Equal(t, apperr.KindDivisionByZero, apperr.KindOf(err))

	_, err = Div(math.MaxInt64, 1)
	require.ErrorIs(t, err, ErrOutOfRange)
}
