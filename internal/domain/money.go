package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// String renders the amount at the currency's standard scale, e.g. "24.00 USD".
func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return m.Amount.StringFixed(int32(scale)) + " " + m.Currency.String()
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
