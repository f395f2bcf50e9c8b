package token

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Currency identifies one of the three in-app token currencies. Red is the
// earned-fast currency, gold the purified one, black a rare bonus currency
// awarded in whole units only.
type Currency string

const (
	Red   Currency = "red"
	Gold  Currency = "gold"
	Black Currency = "black"
)

var ErrUnknownCurrency = errors.New("unknown currency")

func ParseCurrency(value string) (Currency, error) {
	switch Currency(value) {
	case Red, Gold, Black:
		return Currency(value), nil
	}
	return "", ErrUnknownCurrency
}

// Mineable reports whether a currency can be produced by mining.
func (c Currency) Mineable() bool {
	return c == Red || c == Gold
}

// Precision is the fixed number of decimal places token amounts are kept at.
const Precision = 4

// Calculate converts logged reps into a token amount for a habit rate.
// The raw yield reps/repsPerToken is quantized downward to the nearest
// multiple of minGain; anything below one minGain awards nothing. The result
// is rounded to Precision places. Non-positive or malformed inputs yield zero;
// the function never fails.
func Calculate(reps int64, repsPerToken, minGain decimal.Decimal) decimal.Decimal {
	if reps <= 0 || repsPerToken.Sign() <= 0 || minGain.Sign() <= 0 {
		return decimal.Zero
	}
	raw := decimal.NewFromInt(reps).Div(repsPerToken)
	if raw.LessThan(minGain) {
		return decimal.Zero
	}
	steps := raw.Div(minGain).Floor()
	return steps.Mul(minGain).Round(Precision)
}
