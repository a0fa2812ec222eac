package utils

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// IsValidCurrencyCode reports whether code is a known 3-letter ISO-4217 code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// NormalizeCurrencyCode upper-cases a currency code for storage and comparison.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(code)
}
