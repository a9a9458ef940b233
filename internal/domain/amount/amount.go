// Package amount is the arbitrary-precision value type used for currency,
// owned counts and production rates.
package amount

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SignificantDigits bounds the coefficient of every arithmetic result.
const SignificantDigits = 50

// MaxExponent bounds the decimal magnitude Parse accepts. 1e10000 parses;
// 1e10001 does not.
const MaxExponent = 10_000

const divisionPlaces = 24

var ErrMalformed = errors.New("malformed amount")

// Amount is immutable. The zero value is 0.
type Amount struct {
	d decimal.Decimal
}

var (
	Zero = Amount{}
	One  = FromInt(1)
)

func FromInt(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

// FromFloat converts v exactly as printed by strconv. NaN and infinities become 0.
func FromFloat(v float64) Amount {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Zero
	}
	return Amount{d: decimal.NewFromFloat(v)}
}

func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrMalformed
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrMalformed
	}
	if magnitude(d) > MaxExponent || int64(d.Exponent()) < -MaxExponent {
		return Zero, ErrMalformed
	}
	return Amount{d: roundSignificant(d)}, nil
}

// FromString is Parse that substitutes 0 for anything it cannot read.
func FromString(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		return Zero
	}
	return a
}

func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic("amount: cannot parse " + strconv.Quote(s))
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{d: roundSignificant(a.d.Add(b.d))} }

func (a Amount) Sub(b Amount) Amount { return Amount{d: roundSignificant(a.d.Sub(b.d))} }

func (a Amount) Mul(b Amount) Amount { return Amount{d: roundSignificant(a.d.Mul(b.d))} }

// Div returns 0 when b is 0.
func (a Amount) Div(b Amount) Amount {
	if b.d.IsZero() {
		return Zero
	}
	return Amount{d: roundSignificant(a.d.DivRound(b.d, divisionPlaces))}
}

// Pow raises a to a non-negative integer power by repeated squaring.
// Negative exponents are treated as 0.
func (a Amount) Pow(n int) Amount {
	result := decimal.NewFromInt(1)
	if n <= 0 {
		return Amount{d: result}
	}
	base := a.d
	for n > 0 {
		if n&1 == 1 {
			result = roundSignificant(result.Mul(base))
		}
		n >>= 1
		if n > 0 {
			base = roundSignificant(base.Mul(base))
		}
	}
	return Amount{d: result}
}

func (a Amount) Floor() Amount { return Amount{d: a.d.Floor()} }

func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) GTE(b Amount) bool { return a.d.Cmp(b.d) >= 0 }

func (a Amount) LTE(b Amount) bool { return a.d.Cmp(b.d) <= 0 }

func (a Amount) GT(b Amount) bool { return a.d.Cmp(b.d) > 0 }

func (a Amount) LT(b Amount) bool { return a.d.Cmp(b.d) < 0 }

func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

func (a Amount) IsZero() bool { return a.d.IsZero() }

func (a Amount) Sign() int { return a.d.Sign() }

func Max(a, b Amount) Amount {
	if a.GTE(b) {
		return a
	}
	return b
}

func Min(a, b Amount) Amount {
	if a.LTE(b) {
		return a
	}
	return b
}

// Float64 is lossy and meant for thresholds and probabilities only.
func (a Amount) Float64() float64 { return a.d.InexactFloat64() }

// Int64 truncates toward zero. Values outside int64 saturate.
func (a Amount) Int64() int64 {
	t := a.d.Truncate(0)
	if t.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return math.MaxInt64
	}
	if t.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return math.MinInt64
	}
	return t.IntPart()
}

// String is the exact canonical form accepted by Parse.
func (a Amount) String() string { return a.d.String() }

func roundSignificant(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	digits := coefficientDigits(d)
	if digits <= SignificantDigits {
		return d
	}
	places := -(int(d.Exponent()) + digits - SignificantDigits)
	return d.Round(int32(places))
}

// magnitude is the power of ten of the leading digit, or 0 for zero.
func magnitude(d decimal.Decimal) int64 {
	if d.IsZero() {
		return 0
	}
	return int64(d.Exponent()) + int64(coefficientDigits(d)) - 1
}

func coefficientDigits(d decimal.Decimal) int {
	c := d.Coefficient()
	return len(c.Abs(c).String())
}
