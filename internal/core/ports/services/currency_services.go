package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// CurrencySvcFacade defines read operations for currency data
type CurrencySvcFacade interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
