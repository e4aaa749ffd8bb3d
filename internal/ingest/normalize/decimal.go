package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

var moneyStrip = strings.NewReplacer("$", "", "\u20ac", "", "\u00a3", "", ",", "", " ", "", "\u00a0", "")

// ParseDecimal reads money and hours cells: "$1,200.50", "(300)" for a
// negative, "-" as zero. Empty or unparseable input returns ok=false.
func ParseDecimal(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return decimal.Zero, false
	}
	if v == "-" || v == "\u2013" || v == "\u2014" {
		return decimal.Zero, true
	}
	neg := false
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		neg = true
		v = v[1 : len(v)-1]
	}
	v = moneyStrip.Replace(v)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// SplitEven divides total into n parts rounded to cents; the rounding
// remainder goes to the last part so the parts always sum to total.
func SplitEven(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	total = total.Round(2)
	part := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	out := make([]decimal.Decimal, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		out[i] = part
		sum = sum.Add(part)
	}
	out[n-1] = total.Sub(sum)
	return out
}
