package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, cur currency.Unit) Money {
	return Money{Amount: amount, Currency: cur}
}

func (m Money) Mul(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// String renders the amount at the currency's standard scale, e.g. "USD 35.00".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Currency, FormatAmount(m.Amount, m.Currency))
}

// FormatAmount renders amount with the standard number of decimals for cur.
func FormatAmount(amount decimal.Decimal, cur currency.Unit) string {
	scale, _ := currency.Standard.Rounding(cur)
	return amount.StringFixed(int32(scale))
}
