package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CurrencyScale returns the number of minor digits used by an ISO 4217 currency, 2 when unknown.
func CurrencyScale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// FormatAmount renders amount with the precision of the given currency.
// Example: 12.3456 USD is "12.35", 12.3456 JPY is "12".
func FormatAmount(amount decimal.Decimal, code string) string {
	return amount.StringFixed(CurrencyScale(code))
}

// IsValidCurrency reports whether code is a recognised ISO 4217 currency.
func IsValidCurrency(code string) bool {
	_, err := currency.ParseISO(code)
	return err == nil
}
