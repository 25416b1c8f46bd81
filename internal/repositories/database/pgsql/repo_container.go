package pgsql

import (
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryOption decorates repositories before they are handed to services.
type RepositoryOption func(*portsrepo.RepositoryProvider)

func NewRepositoryProvider(dbPool *pgxpool.Pool, options ...RepositoryOption) portsrepo.RepositoryProvider {
	provider := portsrepo.RepositoryProvider{
		UserRepo:     newPgxUserRepository(dbPool),
		CurrencyRepo: newPgxCurrencyRepository(dbPool),
		CategoryRepo: newPgxCategoryRepository(dbPool),
		ExpenseRepo:  newPgxExpenseRepository(dbPool),
	}
	for _, option := range options {
		option(&provider)
	}
	return provider
}
