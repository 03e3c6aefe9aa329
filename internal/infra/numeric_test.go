package infra

import (
	"math"
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 500, -2_500, 999_999_999_999_999} {
		got, err := NumericToInt64(Int64ToNumeric(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestNumericToInt64_NullReturnsError(t *testing.T) {
	_, err := NumericToInt64(pgtype.Numeric{Valid: false})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToInt64_PositiveExponent(t *testing.T) {
	// 42 * 10^2 = 4200
	n := pgtype.Numeric{Int: big.NewInt(42), Exp: 2, Valid: true}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(4200), v)
}

func TestNumericToInt64_NegativeExponentTruncates(t *testing.T) {
	// 50099 * 10^-2 truncates to 500
	n := pgtype.Numeric{Int: big.NewInt(50099), Exp: -2, Valid: true}
	v, err := NumericToInt64(n)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)
}

func TestNumericToInt64_Overflow(t *testing.T) {
	over := new(big.Int).SetInt64(math.MaxInt64)
	over.Add(over, big.NewInt(1))
	_, err := NumericToInt64(pgtype.Numeric{Int: over, Exp: 0, Valid: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}
