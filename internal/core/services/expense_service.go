package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/SscSPs/expenseflow/internal/utils"
	"github.com/SscSPs/expenseflow/internal/utils/pagination"
	"github.com/google/uuid"
)

const (
	defaultExpenseCurrency  = "USD"
	defaultExpensePageLimit = 100
	maxExpensePageLimit     = 500
)

// expenseService implements the ExpenseSvcFacade interface
type expenseService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryWithTx
	categoryRepo portsrepo.CategoryReader
	currencyRepo portsrepo.CurrencyReader

	defaultCurrency  string
	defaultPageLimit int
	maxPageLimit     int
	now              func() time.Time
}

// ExpenseServiceOption is a functional option for configuring the expense service
type ExpenseServiceOption func(*expenseService)

// WithDefaultCurrency sets the currency applied when a new expense omits one.
func WithDefaultCurrency(code string) ExpenseServiceOption {
	return func(s *expenseService) {
		if code != "" {
			s.defaultCurrency = strings.ToUpper(code)
		}
	}
}

// WithPageLimits sets the default and maximum page size of expense listings.
func WithPageLimits(defaultLimit, maxLimit int) ExpenseServiceOption {
	return func(s *expenseService) {
		if defaultLimit > 0 {
			s.defaultPageLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxPageLimit = maxLimit
		}
	}
}

// WithExpenseClock overrides the time source, for tests.
func WithExpenseClock(now func() time.Time) ExpenseServiceOption {
	return func(s *expenseService) {
		s.now = now
	}
}

// NewExpenseService creates a new expense service with the provided dependencies
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryWithTx,
	categoryRepo portsrepo.CategoryReader,
	currencyRepo portsrepo.CurrencyReader,
	userRepo portsrepo.UserReader,
	options ...ExpenseServiceOption,
) portssvc.ExpenseSvcFacade {
	svc := &expenseService{
		BaseService:      BaseService{UserReader: userRepo},
		expenseRepo:      expenseRepo,
		categoryRepo:     categoryRepo,
		currencyRepo:     currencyRepo,
		defaultCurrency:  defaultExpenseCurrency,
		defaultPageLimit: defaultExpensePageLimit,
		maxPageLimit:     maxExpensePageLimit,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, employeeID string) (*domain.Expense, error) {
	if req.Amount == nil {
		return nil, apperrors.NewValidationFailedError("amount is required")
	}
	expenseDate, err := req.ParsedExpenseDate()
	if err != nil {
		return nil, err
	}

	currencyCode := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currencyCode == "" {
		currencyCode = s.defaultCurrency
	}

	category, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expense := domain.Expense{
		ExpenseID:       uuid.NewString(),
		EmployeeID:      employeeID,
		CategoryID:      category.CategoryID,
		Amount:          *req.Amount,
		CurrencyCode:    currencyCode,
		Description:     strings.TrimSpace(req.Description),
		ExpenseDate:     expenseDate,
		ProjectCode:     req.ProjectCode,
		BusinessPurpose: req.BusinessPurpose,
		Status:          domain.ExpenseDraft,
		AuditFields:     domain.NewAuditFields(employeeID, now),
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCurrency(ctx, &expense); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense",
			slog.String("expense_id", expense.ExpenseID),
			slog.String("employee_id", employeeID))
		return nil, err
	}

	expense.Category = category
	s.LogInfo(ctx, "Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("category_id", expense.CategoryID),
		slog.String("amount", expense.Amount.String()),
		slog.String("currency", expense.CurrencyCode))
	return &expense, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, expenseID string, req dto.UpdateExpenseRequest, employeeID string) (*domain.Expense, error) {
	update, err := req.ToExpenseUpdate()
	if err != nil {
		return nil, err
	}
	if update.CurrencyCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*update.CurrencyCode))
		update.CurrencyCode = &code
	}

	tx, err := s.expenseRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction for expense update", slog.String("expense_id", expenseID))
		return nil, err
	}
	defer s.expenseRepo.Rollback(ctx, tx)

	expense, err := s.expenseRepo.FindExpenseByIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		return nil, s.expenseLookupError(ctx, err, expenseID)
	}
	if expense.EmployeeID != employeeID {
		s.LogDebug(ctx, "Expense update by non-owner", slog.String("expense_id", expenseID))
		return nil, apperrors.NewNotFoundError("expense not found")
	}
	if !expense.CanEdit() {
		return nil, apperrors.NewInvalidStateError("can only update draft expenses")
	}

	var category *domain.Category
	if update.CategoryID != nil {
		if category, err = s.resolveCategory(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := expense.ApplyUpdate(update, employeeID, s.now()); err != nil {
		return nil, err
	}
	if err := s.checkCurrency(ctx, expense); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
		s.LogError(ctx, err, "Failed to update expense", slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := s.expenseRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit expense update", slog.String("expense_id", expenseID))
		return nil, err
	}
	expense.Version++

	if category == nil {
		if category, err = s.categoryRepo.FindCategoryByID(ctx, expense.CategoryID); err != nil {
			s.LogError(ctx, err, "Failed to load category of updated expense", slog.String("category_id", expense.CategoryID))
			return nil, err
		}
	}
	expense.Category = category

	s.LogInfo(ctx, "Expense updated", slog.String("expense_id", expenseID))
	return expense, nil
}

func (s *expenseService) SubmitExpense(ctx context.Context, expenseID string, employeeID string) (*domain.Expense, error) {
	tx, err := s.expenseRepo.Begin(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to begin transaction for expense submission", slog.String("expense_id", expenseID))
		return nil, err
	}
	defer s.expenseRepo.Rollback(ctx, tx)

	expense, err := s.expenseRepo.FindExpenseByIDForUpdate(ctx, tx, expenseID)
	if err != nil {
		return nil, s.expenseLookupError(ctx, err, expenseID)
	}
	if expense.EmployeeID != employeeID {
		s.LogDebug(ctx, "Expense submission by non-owner", slog.String("expense_id", expenseID))
		return nil, apperrors.NewNotFoundError("expense not found")
	}

	now := s.now()
	if err := expense.Submit(employeeID, now); err != nil {
		return nil, err
	}

	employee, err := s.UserReader.FindUserByID(ctx, employeeID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load submitting employee", slog.String("employee_id", employeeID))
		return nil, err
	}

	if approverID, ok := employee.ApproverID(); ok {
		approval := domain.NewPendingApproval(uuid.NewString(), expense.ExpenseID, approverID, employeeID, now)
		if err := s.expenseRepo.SaveApprovalInTx(ctx, tx, approval); err != nil {
			s.LogError(ctx, err, "Failed to create approval", slog.String("expense_id", expenseID))
			return nil, err
		}
		expense.Approvals = []domain.Approval{approval}
	} else {
		// Known gap: with no approver the expense stays submitted with no way forward.
		s.LogWarn(ctx, "Expense submitted without a designated approver",
			slog.String("expense_id", expenseID),
			slog.String("employee_id", employeeID))
		expense.Approvals = []domain.Approval{}
	}

	if err := s.expenseRepo.UpdateExpenseInTx(ctx, tx, *expense); err != nil {
		s.LogError(ctx, err, "Failed to mark expense submitted", slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := s.expenseRepo.Commit(ctx, tx); err != nil {
		s.LogError(ctx, err, "Failed to commit expense submission", slog.String("expense_id", expenseID))
		return nil, err
	}
	expense.Version++

	s.LogInfo(ctx, "Expense submitted",
		slog.String("expense_id", expenseID),
		slog.Int("approvals_created", len(expense.Approvals)))
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, employeeID string, params dto.ListExpensesParams) ([]domain.Expense, error) {
	status := params.StatusFilter()
	if status != nil && !status.IsValid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown status %q", *status))
	}
	window := pagination.Normalize(params.Skip, params.Limit, s.defaultPageLimit, s.maxPageLimit)

	expenses, err := s.expenseRepo.ListExpensesByEmployee(ctx, employeeID, status, window.Skip, window.Limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses",
			slog.String("employee_id", employeeID),
			slog.Int("skip", window.Skip),
			slog.Int("limit", window.Limit))
		return nil, fmt.Errorf("failed to list expenses for employee %s: %w", employeeID, err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}

	if err := attachCategories(ctx, s.categoryRepo, expenses); err != nil {
		s.LogError(ctx, err, "Failed to attach categories to expenses")
		return nil, err
	}
	return expenses, nil
}

func (s *expenseService) GetExpense(ctx context.Context, expenseID string, requestingUserID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindExpenseWithApprovals(ctx, expenseID)
	if err != nil {
		return nil, s.expenseLookupError(ctx, err, expenseID)
	}

	if !canViewExpense(expense, expense.Approvals, requestingUserID) {
		s.LogDebug(ctx, "Expense requested by unrelated user", slog.String("expense_id", expenseID))
		return nil, apperrors.NewNotFoundError("expense not found")
	}

	if expense.Approvals == nil {
		expense.Approvals = []domain.Approval{}
	}
	category, err := s.categoryRepo.FindCategoryByID(ctx, expense.CategoryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load category of expense", slog.String("category_id", expense.CategoryID))
		return nil, err
	}
	expense.Category = category
	return expense, nil
}

// canViewExpense reports whether userID owns the expense or is an approver on it.
func canViewExpense(expense *domain.Expense, approvals []domain.Approval, userID string) bool {
	if expense.EmployeeID == userID {
		return true
	}
	for _, a := range approvals {
		if a.ApproverID == userID {
			return true
		}
	}
	return false
}

func (s *expenseService) resolveCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("category not found")
		}
		s.LogError(ctx, err, "Failed to find category", slog.String("category_id", categoryID))
		return nil, err
	}
	return category, nil
}

// checkCurrency verifies that the expense currency is known and the amount fits its precision.
func (s *expenseService) checkCurrency(ctx context.Context, expense *domain.Expense) error {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, expense.CurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationFailedError(fmt.Sprintf("unsupported currency %q", expense.CurrencyCode))
		}
		s.LogError(ctx, err, "Failed to find currency", slog.String("currency_code", expense.CurrencyCode))
		return err
	}
	if !utils.FitsCurrencyPrecision(expense.Amount, *currency) {
		return apperrors.NewValidationFailedError(fmt.Sprintf(
			"amount %s has more than %d decimal places allowed for %s",
			expense.Amount.String(), currency.Precision, currency.CurrencyCode))
	}
	return nil
}

func (s *expenseService) expenseLookupError(ctx context.Context, err error, expenseID string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError("expense not found")
	}
	s.LogError(ctx, err, "Failed to find expense", slog.String("expense_id", expenseID))
	return err
}

// attachCategories embeds each expense's category, resolved from a single listing.
func attachCategories(ctx context.Context, repo portsrepo.CategoryReader, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	categories, err := repo.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.Category, len(categories))
	for i := range categories {
		byID[categories[i].CategoryID] = &categories[i]
	}
	for i := range expenses {
		expenses[i].Category = byID[expenses[i].CategoryID]
	}
	return nil
}
