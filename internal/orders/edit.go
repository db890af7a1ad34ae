package orders

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Phase is where a quote sits in the edit-and-submit flow
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
)

const (
	rateDecimals   = 4
	amountDecimals = 2
)

// leading numeric prefix, the part a lenient float parse would accept
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseLenient reads the leading number of s; ok is false when there is none
// or when it does not fit a finite float64 ("1e400" overflows to Inf).
func ParseLenient(s string) (decimal.Decimal, bool) {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, false
	}
	if f == 0 {
		// also covers underflow such as "1e-400"
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatRate renders a user-typed rate with four decimals; junk becomes 0.0000
func FormatRate(input string) string {
	d, ok := ParseLenient(input)
	if !ok {
		return decimal.Zero.StringFixed(rateDecimals)
	}
	return d.StringFixed(rateDecimals)
}

// BuyAmount is round2(sellAmount * rate). An unparsable sell amount counts as zero.
func BuyAmount(sellAmount, rate string) string {
	sell, _ := ParseLenient(sellAmount)
	r, _ := ParseLenient(rate)
	return sell.Mul(r).StringFixed(amountDecimals)
}

// ApplyRateEdit returns o with the new rate, the derived buy amount and
// the optimistic working state
func ApplyRateEdit(o Order, input string) Order {
	rate := FormatRate(input)
	o.ExchangeRate = rate
	o.BuyAmount = BuyAmount(o.SellAmount, rate)
	o.State = StateWorking
	return o
}
