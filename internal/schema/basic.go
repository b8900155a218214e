package schema

import (
	"strconv"
	"strings"

	"github.com/yanun0323/errors"
)

// Price is a fixed-point price scaled by PriceScale.
type Price int64

// Quantity is a signed share count.
type Quantity int64

// Notional is a fixed-point currency amount scaled by PriceScale.
type Notional int64

// PriceScale is the fixed-point denominator for Price and Notional.
const PriceScale = 10_000

var ErrInvalidPrice = errors.New("invalid price literal")

// PriceFromFloat converts a float dollar amount to a scaled Price.
func PriceFromFloat(v float64) Price {
	if v >= 0 {
		return Price(v*PriceScale + 0.5)
	}
	return Price(v*PriceScale - 0.5)
}

// Float64 returns the price as a float dollar amount.
func (p Price) Float64() float64 {
	return float64(p) / PriceScale
}

func (p Price) String() string {
	return strconv.FormatFloat(p.Float64(), 'f', -1, 64)
}

// Float64 returns the notional as a float dollar amount.
func (n Notional) Float64() float64 {
	return float64(n) / PriceScale
}

// ParsePrice parses a decimal string like "123.45" into a scaled Price.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidPrice
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidPrice, s)
	}

	// Pad or truncate the fraction to exactly four digits.
	const fracDigits = 4
	if len(fracPart) > fracDigits {
		fracPart = fracPart[:fracDigits]
	}
	for len(fracPart) < fracDigits {
		fracPart += "0"
	}
	frac := int64(0)
	if fracPart != "0000" {
		frac, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, errors.Wrap(ErrInvalidPrice, s)
		}
	}

	v := whole*PriceScale + frac
	if neg {
		v = -v
	}
	return Price(v), nil
}

func AbsQuantity(q Quantity) Quantity {
	if q < 0 {
		return -q
	}
	return q
}
