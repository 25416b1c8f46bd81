package services

import (
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo,
		WithAdminUsernames(cfg.AdminUsernames...),
		WithUserPageLimits(cfg.DefaultPageLimit, cfg.MaxPageLimit),
	)
	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.Category = NewCategoryService(repos.CategoryRepo, repos.UserRepo)
	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.CategoryRepo,
		repos.CurrencyRepo,
		repos.UserRepo,
		WithDefaultCurrency(cfg.DefaultCurrency),
		WithPageLimits(cfg.DefaultPageLimit, cfg.MaxPageLimit),
	)
	container.Approval = NewApprovalService(repos.ExpenseRepo, repos.CategoryRepo)
	container.TokenService = NewTokenService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.ExpenseSvcFacade  = (*expenseService)(nil)
	_ portssvc.ApprovalSvcFacade = (*approvalService)(nil)
	_ portssvc.CategorySvcFacade = (*categoryService)(nil)
	_ portssvc.CurrencySvcFacade = (*currencyService)(nil)
	_ portssvc.UserSvcFacade     = (*userService)(nil)
	_ portssvc.TokenSvcFacade    = (*tokenService)(nil)
)
