package postgres

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cory-johannsen/ascend/internal/game/wide"
)

var bigTen = big.NewInt(10)

// numericToWide converts an integral NUMERIC value. A NULL value maps to zero.
//
// Postcondition: Returns an error for values with a fractional part.
func numericToWide(n pgtype.Numeric) (wide.Int, error) {
	if !n.Valid || n.Int == nil {
		return wide.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return wide.Zero, fmt.Errorf("numeric value is not finite")
	}
	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(bigTen, big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		q, r := new(big.Int).QuoRem(v, new(big.Int).Exp(bigTen, big.NewInt(int64(-n.Exp)), nil), new(big.Int))
		if r.Sign() != 0 {
			return wide.Zero, fmt.Errorf("numeric value %s has a fractional part", n.Int)
		}
		v = q
	}
	return wide.FromBig(v), nil
}

func wideToNumeric(w wide.Int) pgtype.Numeric {
	return pgtype.Numeric{Int: w.Big(), Valid: true}
}
