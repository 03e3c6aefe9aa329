package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToInt64 converts a pgtype.Numeric read from a numeric(15,0) column
// into whole cents. NULL and int64 overflow are errors; fractional digits
// (negative exponent) shouldn't appear on these columns and are truncated.
func NumericToInt64(n pgtype.Numeric) (int64, error) {
	if !n.Valid {
		return 0, fmt.Errorf("numeric value is NULL")
	}

	// pgtype.Numeric stores value as Int * 10^Exp.
	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		v.Mul(v, scale)
	case n.Exp < 0:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
		v.Quo(v, scale)
	}

	if !v.IsInt64() {
		return 0, fmt.Errorf("numeric value %s overflows int64", v.String())
	}
	return v.Int64(), nil
}

// Int64ToNumeric wraps whole cents for writing to a numeric(15,0) column.
func Int64ToNumeric(v int64) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              big.NewInt(v),
		Exp:              0,
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}
