package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ApprovalServiceTestSuite struct {
	suite.Suite
	expenseRepo  *MockExpenseRepository
	categoryRepo *MockCategoryRepository
	service      portssvc.ApprovalSvcFacade
	tx           *fakeTx
	now          time.Time
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.expenseRepo = new(MockExpenseRepository)
	suite.categoryRepo = new(MockCategoryRepository)
	suite.service = services.NewApprovalService(suite.expenseRepo, suite.categoryRepo)
	suite.tx = &fakeTx{}
	suite.now = time.Now().UTC()
	suite.expenseRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (suite *ApprovalServiceTestSuite) submitted() *domain.Expense {
	submittedAt := suite.now.Add(-time.Hour)
	return &domain.Expense{
		ExpenseID:    "exp_1",
		EmployeeID:   "emp_1",
		CategoryID:   "cat_1",
		Amount:       decimal.RequireFromString("75.00"),
		CurrencyCode: "USD",
		Description:  "Hotel",
		ExpenseDate:  submittedAt,
		Status:       domain.ExpenseSubmitted,
		SubmittedAt:  &submittedAt,
		AuditFields:  domain.NewAuditFields("emp_1", submittedAt),
	}
}

func (suite *ApprovalServiceTestSuite) pending() *domain.Approval {
	a := domain.NewPendingApproval("apr_1", "exp_1", "mgr_1", "emp_1", suite.now.Add(-time.Hour))
	return &a
}

func (suite *ApprovalServiceTestSuite) expectLocked(approval *domain.Approval, expense *domain.Expense) {
	ctx := context.Background()
	suite.expenseRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.expenseRepo.On("FindApprovalByIDForUpdate", ctx, suite.tx, approval.ApprovalID).Return(approval, nil).Once()
	suite.expenseRepo.On("FindExpenseByIDForUpdate", ctx, suite.tx, expense.ExpenseID).Return(expense, nil).Once()
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_Success() {
	ctx := context.Background()
	suite.expectLocked(suite.pending(), suite.submitted())
	suite.expenseRepo.On("UpdateApprovalDecisionInTx", ctx, suite.tx, mock.MatchedBy(func(a domain.Approval) bool {
		return a.Status == domain.ApprovalApproved && a.DecidedAt != nil && a.Comments != nil && *a.Comments == "Looks good"
	})).Return(nil).Once()
	suite.expenseRepo.On("UpdateExpenseInTx", ctx, suite.tx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.Status == domain.ExpenseApproved && e.ApprovedAt != nil && e.RejectedAt == nil
	})).Return(nil).Once()
	suite.expenseRepo.On("Commit", ctx, suite.tx).Return(nil).Once()

	comments := "Looks good"
	approval, err := suite.service.ApproveExpense(ctx, "apr_1", "mgr_1", &comments)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalApproved, approval.Status)
	suite.Equal(int64(2), approval.Version)
	suite.expenseRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveExpense_BlankCommentsStoredAsNull() {
	ctx := context.Background()
	suite.expectLocked(suite.pending(), suite.submitted())
	suite.expenseRepo.On("UpdateApprovalDecisionInTx", ctx, suite.tx, mock.MatchedBy(func(a domain.Approval) bool {
		return a.Comments == nil
	})).Return(nil).Once()
	suite.expenseRepo.On("UpdateExpenseInTx", ctx, suite.tx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()
	suite.expenseRepo.On("Commit", ctx, suite.tx).Return(nil).Once()

	blank := "  "
	_, err := suite.service.ApproveExpense(ctx, "apr_1", "mgr_1", &blank)

	suite.NoError(err)
}

func (suite *ApprovalServiceTestSuite) TestRejectExpense_Success() {
	ctx := context.Background()
	suite.expectLocked(suite.pending(), suite.submitted())
	suite.expenseRepo.On("UpdateApprovalDecisionInTx", ctx, suite.tx, mock.MatchedBy(func(a domain.Approval) bool {
		return a.Status == domain.ApprovalRejected && *a.Comments == "Missing receipt"
	})).Return(nil).Once()
	suite.expenseRepo.On("UpdateExpenseInTx", ctx, suite.tx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.Status == domain.ExpenseRejected && e.RejectionReason != nil && *e.RejectionReason == "Missing receipt" && e.RejectedAt != nil
	})).Return(nil).Once()
	suite.expenseRepo.On("Commit", ctx, suite.tx).Return(nil).Once()

	approval, err := suite.service.RejectExpense(ctx, "apr_1", "mgr_1", "Missing receipt")

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalRejected, approval.Status)
	suite.expenseRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRejectExpense_RequiresCommentsBeforeAnyLookup() {
	for _, comments := range []string{"", " \t "} {
		_, err := suite.service.RejectExpense(context.Background(), "apr_1", "mgr_1", comments)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.expenseRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecision_UnknownApproval() {
	ctx := context.Background()
	suite.expenseRepo.On("Begin", ctx).Return(suite.tx, nil).Once()
	suite.expenseRepo.On("FindApprovalByIDForUpdate", ctx, suite.tx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ApproveExpense(ctx, "missing", "mgr_1", nil)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ApprovalServiceTestSuite) TestDecision_WrongApprover() {
	ctx := context.Background()

	suite.Run("unrelated user sees not found", func() {
		suite.expectLocked(suite.pending(), suite.submitted())
		_, err := suite.service.ApproveExpense(ctx, "apr_1", "stranger", nil)
		suite.ErrorIs(err, apperrors.ErrNotFound)
	})

	suite.Run("submitter is forbidden", func() {
		suite.expectLocked(suite.pending(), suite.submitted())
		_, err := suite.service.RejectExpense(ctx, "apr_1", "emp_1", "self reject")
		suite.ErrorIs(err, apperrors.ErrForbidden)
	})

	suite.expenseRepo.AssertNotCalled(suite.T(), "UpdateApprovalDecisionInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.expenseRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecision_AlreadyDecided() {
	ctx := context.Background()
	approval := suite.pending()
	suite.Require().NoError(approval.Approve("mgr_1", nil, suite.now))
	expense := suite.submitted()
	suite.Require().NoError(expense.MarkApproved("mgr_1", suite.now))
	suite.expectLocked(approval, expense)

	_, err := suite.service.RejectExpense(ctx, "apr_1", "mgr_1", "too late")

	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.expenseRepo.AssertNotCalled(suite.T(), "UpdateExpenseInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecision_GuardedWriteLosesRace() {
	ctx := context.Background()
	suite.expectLocked(suite.pending(), suite.submitted())
	suite.expenseRepo.On("UpdateApprovalDecisionInTx", ctx, suite.tx, mock.AnythingOfType("domain.Approval")).
		Return(apperrors.NewInvalidStateError("approval already processed")).Once()

	_, err := suite.service.ApproveExpense(ctx, "apr_1", "mgr_1", nil)

	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.expenseRepo.AssertNotCalled(suite.T(), "UpdateExpenseInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.expenseRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *ApprovalServiceTestSuite) TestDecision_CommitFailure() {
	ctx := context.Background()
	commitErr := errors.New("connection lost")
	suite.expectLocked(suite.pending(), suite.submitted())
	suite.expenseRepo.On("UpdateApprovalDecisionInTx", ctx, suite.tx, mock.AnythingOfType("domain.Approval")).Return(nil).Once()
	suite.expenseRepo.On("UpdateExpenseInTx", ctx, suite.tx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()
	suite.expenseRepo.On("Commit", ctx, suite.tx).Return(commitErr).Once()

	approval, err := suite.service.ApproveExpense(ctx, "apr_1", "mgr_1", nil)

	suite.Nil(approval)
	suite.ErrorIs(err, commitErr)
}

func (suite *ApprovalServiceTestSuite) TestListPendingApprovals() {
	ctx := context.Background()
	expense := suite.submitted()
	expense.Approvals = []domain.Approval{*suite.pending()}
	suite.expenseRepo.On("ListExpensesAwaitingApprover", ctx, "mgr_1").Return([]domain.Expense{*expense}, nil).Once()
	suite.categoryRepo.On("ListCategories", ctx, false).
		Return([]domain.Category{{CategoryID: "cat_1", Name: "Lodging"}}, nil).Once()

	expenses, err := suite.service.ListPendingApprovals(ctx, "mgr_1")

	suite.Require().NoError(err)
	suite.Require().Len(expenses, 1)
	suite.Require().Len(expenses[0].Approvals, 1)
	suite.Equal(domain.ApprovalPending, expenses[0].Approvals[0].Status)
	suite.Equal("Lodging", expenses[0].Category.Name)
}

func (suite *ApprovalServiceTestSuite) TestListPendingApprovals_None() {
	ctx := context.Background()
	suite.expenseRepo.On("ListExpensesAwaitingApprover", ctx, "mgr_1").Return([]domain.Expense{}, nil).Once()

	expenses, err := suite.service.ListPendingApprovals(ctx, "mgr_1")

	suite.Require().NoError(err)
	suite.NotNil(expenses)
	suite.Empty(expenses)
	suite.categoryRepo.AssertNotCalled(suite.T(), "ListCategories", mock.Anything, mock.Anything)
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
