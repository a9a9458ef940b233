package amount

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// ScientificExponent is the first power of ten rendered in scientific notation.
const ScientificExponent = 36

var suffixes = []string{"", "K", "M", "B", "T", "Qa", "Qi", "Sx", "Sp", "Oc", "No", "Dc"}

// Display formats a for humans: "12.5", "1.23K", "45.6Qa", "1.23e+40".
func (a Amount) Display() string {
	if a.d.Sign() < 0 {
		return "-" + Amount{d: a.d.Neg()}.Display()
	}
	if a.d.LessThan(decimal.NewFromInt(1000)) {
		return a.d.Truncate(2).String()
	}
	exp := coefficientDigits(a.d) + int(a.d.Exponent()) - 1
	if exp >= ScientificExponent {
		mantissa := a.d.Shift(int32(-exp)).Truncate(2)
		return mantissa.String() + "e+" + strconv.Itoa(exp)
	}
	tier := exp / 3
	return a.d.Shift(int32(-3*tier)).Truncate(2).String() + suffixes[tier]
}
