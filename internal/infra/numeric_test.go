package infra

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToInt64_FreeCourt(t *testing.T) {
	n := Int64ToNumeric(0)
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestNumericToInt64_TypicalCourtCost(t *testing.T) {
	// 2400 cents, a 24.00 booking fee
	n := Int64ToNumeric(2400)
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), v)
}

func TestNumericToInt64_MaxCourtCost(t *testing.T) {
	// numeric(12,0) max is 999_999_999_999
	maxVal := int64(999_999_999_999)
	n := Int64ToNumeric(maxVal)
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, maxVal, v)
}

func TestNumericToInt64_NullReturnsError(t *testing.T) {
	n := pgtype.Numeric{Valid: false}
	_, err := NumericToInt64(n)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToInt64_WithPositiveExponent(t *testing.T) {
	// 24 * 10^2 = 2400
	n := pgtype.Numeric{
		Int:   big.NewInt(24),
		Exp:   2,
		Valid: true,
	}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), v)
}

func TestNumericToInt64_WithNegativeExponent(t *testing.T) {
	// 240099 * 10^-2 = 2400 (truncated)
	n := pgtype.Numeric{
		Int:   big.NewInt(240099),
		Exp:   -2,
		Valid: true,
	}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), v)
}

func TestNumericToInt64_Overflow(t *testing.T) {
	overflow := new(big.Int).SetInt64(math.MaxInt64)
	overflow.Add(overflow, big.NewInt(1))
	n := pgtype.Numeric{
		Int:   overflow,
		Exp:   0,
		Valid: true,
	}
	_, err := NumericToInt64(n)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestInt64ToNumeric_Roundtrip(t *testing.T) {
	values := []int64{0, 1, 2400, 150000, 999_999_999_999}
	for _, v := range values {
		n := Int64ToNumeric(v)
		result, err := NumericToInt64(n)
		require.NoError(t, err, "value: %d", v)
		assert.Equal(t, v, result, "value: %d", v)
	}
}
