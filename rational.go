package book

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Rational converts d into a reduced fraction num/den with 0 < den <= maxDenom.
//
// When the exact fraction needs a larger denominator, the closest fraction
// with a bounded denominator is returned. It fails if the numerator does not
// fit in an int64.
func Rational(d decimal.Decimal, maxDenom int64) (num, den int64, err error) {
	r := d.Rat() // always reduced
	limit := big.NewInt(maxDenom)
	if r.Denom().Cmp(limit) > 0 {
		r = limitDenominator(r, limit)
	}
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return 0, 0, fmt.Errorf("%s overflows a 64-bit fraction", d)
	}
	return r.Num().Int64(), r.Denom().Int64(), nil
}

// FromRational returns num/den as a decimal. A zero denominator gives zero.
func FromRational(num, den int64) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	n, d := decimal.NewFromInt(num), decimal.NewFromInt(den)
	if q, r := n.QuoRem(d, 0); r.IsZero() {
		return q
	}
	return n.DivRound(d, 12)
}

// limitDenominator finds the closest fraction to r whose denominator does
// not exceed max, walking the continued fraction expansion of |r|.
func limitDenominator(r *big.Rat, max *big.Int) *big.Rat {
	neg := r.Sign() < 0
	abs := new(big.Rat).Abs(r)

	p0, q0, p1, q1 := big.NewInt(0), big.NewInt(1), big.NewInt(1), big.NewInt(0)
	n, d := new(big.Int).Set(abs.Num()), new(big.Int).Set(abs.Denom())
	for {
		a := new(big.Int).Div(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(max) > 0 {
			break
		}
		p0, q0, p1, q1 = p1, q1, new(big.Int).Add(p0, new(big.Int).Mul(a, p1)), q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
		if d.Sign() == 0 {
			break
		}
	}
	// the last convergent p1/q1, or the best semiconvergent below max.
	k := new(big.Int).Div(new(big.Int).Sub(max, q0), q1)
	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	best := bound1
	dist1 := new(big.Rat).Abs(new(big.Rat).Sub(bound1, abs))
	dist2 := new(big.Rat).Abs(new(big.Rat).Sub(bound2, abs))
	if dist2.Cmp(dist1) <= 0 {
		best = bound2
	}
	if neg {
		best.Neg(best)
	}
	return best
}
