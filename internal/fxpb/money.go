package fxpb

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// nanoDigits is the fractional precision carried by Money.
const nanoDigits = 9

// ErrInvalidAmount reports a string that does not parse as a decimal amount.
var ErrInvalidAmount = errors.New("invalid money amount")

// ParseMoney converts a plain decimal string such as "112.25" or "-0.5" into
// Money. Digits beyond nano precision are truncated, not rounded. Nanos
// carries the sign of the amount, so negative values below one unit keep
// their sign.
func ParseMoney(currencyCode, amount string) (*Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	d = d.Truncate(nanoDigits)

	units := d.IntPart()
	nanos := d.Sub(decimal.NewFromInt(units)).Shift(nanoDigits).IntPart()

	return &Money{
		CurrencyCode: currencyCode,
		Units:        units,
		Nanos:        int32(nanos),
	}, nil
}

// FormatMoney converts Money back to a plain decimal string with trailing
// fractional zeros stripped, e.g. "112.25", "-0.5" or "130". An absent Money
// formats as the empty string.
func FormatMoney(m *Money) string {
	if m == nil {
		return ""
	}
	return decimal.New(m.Units, 0).Add(decimal.New(int64(m.Nanos), -nanoDigits)).String()
}
