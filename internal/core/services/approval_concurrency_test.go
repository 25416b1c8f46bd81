package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// lockingStore serializes transactions the way row locks serialize two
// decisions on the same approval. Writes are staged and applied on commit.
type lockingStore struct {
	portsrepo.ExpenseRepositoryWithTx

	lock      sync.Mutex
	mu        sync.Mutex
	expenses  map[string]domain.Expense
	approvals map[string]domain.Approval
}

type storeTx struct {
	pgx.Tx
	release   sync.Once
	expenses  map[string]domain.Expense
	approvals map[string]domain.Approval
}

func newLockingStore(expense domain.Expense, approval domain.Approval) *lockingStore {
	return &lockingStore{
		expenses:  map[string]domain.Expense{expense.ExpenseID: expense},
		approvals: map[string]domain.Approval{approval.ApprovalID: approval},
	}
}

func (s *lockingStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.lock.Lock()
	return &storeTx{expenses: map[string]domain.Expense{}, approvals: map[string]domain.Approval{}}, nil
}

func (s *lockingStore) Commit(ctx context.Context, tx pgx.Tx) error {
	t := tx.(*storeTx)
	s.mu.Lock()
	for id, e := range t.expenses {
		s.expenses[id] = e
	}
	for id, a := range t.approvals {
		s.approvals[id] = a
	}
	s.mu.Unlock()
	t.release.Do(s.lock.Unlock)
	return nil
}

func (s *lockingStore) Rollback(ctx context.Context, tx pgx.Tx) error {
	tx.(*storeTx).release.Do(s.lock.Unlock)
	return nil
}

// FindExpenseWithApprovals sees committed state only, and a commit lands as a whole.
func (s *lockingStore) FindExpenseWithApprovals(ctx context.Context, expenseID string) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e.Approvals = []domain.Approval{}
	for _, a := range s.approvals {
		if a.ExpenseID == expenseID {
			e.Approvals = append(e.Approvals, a)
		}
	}
	return &e, nil
}

func (s *lockingStore) FindApprovalByIDForUpdate(ctx context.Context, tx pgx.Tx, approvalID string) (*domain.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.approvals[approvalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (s *lockingStore) FindExpenseByIDForUpdate(ctx context.Context, tx pgx.Tx, expenseID string) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (s *lockingStore) UpdateApprovalDecisionInTx(ctx context.Context, tx pgx.Tx, approval domain.Approval) error {
	s.mu.Lock()
	current := s.approvals[approval.ApprovalID]
	s.mu.Unlock()
	if current.Status != domain.ApprovalPending {
		return apperrors.NewInvalidStateError("approval already processed")
	}
	tx.(*storeTx).approvals[approval.ApprovalID] = approval
	return nil
}

func (s *lockingStore) UpdateExpenseInTx(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	tx.(*storeTx).expenses[expense.ExpenseID] = expense
	return nil
}

func submittedLunch(now time.Time) (domain.Expense, domain.Approval) {
	submittedAt := now.Add(-time.Minute)
	expense := domain.Expense{
		ExpenseID:    "exp_1",
		EmployeeID:   "emp_1",
		CategoryID:   "cat_1",
		Amount:       decimal.NewFromInt(10),
		CurrencyCode: "USD",
		Description:  "Lunch",
		ExpenseDate:  now,
		Status:       domain.ExpenseSubmitted,
		SubmittedAt:  &submittedAt,
		AuditFields:  domain.NewAuditFields("emp_1", submittedAt),
	}
	return expense, domain.NewPendingApproval("apr_1", "exp_1", "mgr_1", "emp_1", submittedAt)
}

func TestApprovalService_ConcurrentDecisionsHaveOneWinner(t *testing.T) {
	for i := 0; i < 20; i++ {
		store := newLockingStore(submittedLunch(time.Now().UTC()))
		svc := services.NewApprovalService(store, nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, errs[0] = svc.ApproveExpense(context.Background(), "apr_1", "mgr_1", nil)
		}()
		go func() {
			defer wg.Done()
			<-start
			_, errs[1] = svc.RejectExpense(context.Background(), "apr_1", "mgr_1", "over budget")
		}()
		close(start)
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
				continue
			}
			assert.True(t, errors.Is(err, apperrors.ErrInvalidState), "loser must see invalid state, got %v", err)
		}
		require.Equal(t, 1, successes, "exactly one decision must win")

		final := store.expenses["exp_1"]
		decided := store.approvals["apr_1"]
		if errs[0] == nil {
			assert.Equal(t, domain.ExpenseApproved, final.Status)
			assert.Equal(t, domain.ApprovalApproved, decided.Status)
			assert.Nil(t, final.RejectedAt)
		} else {
			assert.Equal(t, domain.ExpenseRejected, final.Status)
			assert.Equal(t, domain.ApprovalRejected, decided.Status)
			assert.Nil(t, final.ApprovedAt)
		}
	}
}

func TestExpenseService_GetExpenseDuringDecisionStaysInLockstep(t *testing.T) {
	lockstep := map[domain.ExpenseStatus]domain.ApprovalStatus{
		domain.ExpenseSubmitted: domain.ApprovalPending,
		domain.ExpenseApproved:  domain.ApprovalApproved,
	}
	categories := new(MockCategoryRepository)
	categories.On("FindCategoryByID", mock.Anything, "cat_1").Return(&domain.Category{CategoryID: "cat_1", Name: "Meals"}, nil)

	for i := 0; i < 20; i++ {
		store := newLockingStore(submittedLunch(time.Now().UTC()))
		approvals := services.NewApprovalService(store, nil)
		expenses := services.NewExpenseService(store, categories, nil, nil)

		done := make(chan struct{})
		var decideErr error
		go func() {
			defer close(done)
			_, decideErr = approvals.ApproveExpense(context.Background(), "apr_1", "mgr_1", nil)
		}()

		observed := map[domain.ExpenseStatus]bool{}
		for finished := false; !finished; {
			select {
			case <-done:
				finished = true
			default:
			}
			got, err := expenses.GetExpense(context.Background(), "exp_1", "emp_1")
			require.NoError(t, err)
			require.Len(t, got.Approvals, 1)
			want, known := lockstep[got.Status]
			require.True(t, known, "unexpected expense status %s", got.Status)
			assert.Equal(t, want, got.Approvals[0].Status, "expense %s next to approval %s", got.Status, got.Approvals[0].Status)
			observed[got.Status] = true
		}

		require.NoError(t, decideErr)
		assert.True(t, observed[domain.ExpenseApproved], "last read happens after the decision commits")
	}
}
