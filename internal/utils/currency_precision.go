package utils

import (
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FitsCurrencyPrecision reports whether amount has no more decimal places than the currency allows.
func FitsCurrencyPrecision(amount decimal.Decimal, currency domain.Currency) bool {
	return amount.Equal(amount.Truncate(int32(currency.Precision)))
}
