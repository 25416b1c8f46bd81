package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/SscSPs/expenseflow/internal/handlers"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExpenseHandlerTestSuite struct {
	handlerSuite
}

func TestExpenseHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseHandlerTestSuite))
}

func sampleExpense(employeeID string, status domain.ExpenseStatus) *domain.Expense {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return &domain.Expense{
		ExpenseID:    uuid.NewString(),
		EmployeeID:   employeeID,
		CategoryID:   uuid.NewString(),
		Amount:       decimal.RequireFromString("42.50"),
		CurrencyCode: "USD",
		Description:  "Taxi to client",
		ExpenseDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       status,
		AuditFields:  domain.NewAuditFields(employeeID, now),
	}
}

func (s *ExpenseHandlerTestSuite) TestCreateExpense_Success() {
	employeeID := uuid.NewString()
	categoryID := uuid.NewString()
	created := sampleExpense(employeeID, domain.ExpenseDraft)
	created.CategoryID = categoryID

	s.expenseService.On("CreateExpense",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(req dto.CreateExpenseRequest) bool {
			return req.Amount != nil && req.Amount.Equal(decimal.RequireFromString("42.50")) &&
				req.CategoryID == categoryID && req.CurrencyCode == ""
		}),
		employeeID,
	).Return(created, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/expenses", employeeID, map[string]any{
		"amount":      "42.50",
		"description": "Taxi to client",
		"expenseDate": "2026-03-01",
		"categoryID":  categoryID,
	})

	s.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.ExpenseResponse
	s.decode(w, &res)
	s.Equal(created.ExpenseID, res.ExpenseID)
	s.Equal(domain.ExpenseDraft, res.Status)
	s.Equal("2026-03-01", res.ExpenseDate)
	s.True(res.Amount.Equal(decimal.RequireFromString("42.50")))
}

func (s *ExpenseHandlerTestSuite) TestCreateExpense_BindingFailures() {
	employeeID := uuid.NewString()
	valid := func() map[string]any {
		return map[string]any{
			"amount":      10,
			"description": "Lunch",
			"expenseDate": "2026-03-01",
			"categoryID":  uuid.NewString(),
		}
	}

	cases := map[string]struct {
		mutate func(map[string]any)
		field  string
	}{
		"missing amount":      {func(b map[string]any) { delete(b, "amount") }, "amount"},
		"blank description":   {func(b map[string]any) { b["description"] = "   " }, "description"},
		"bad date":            {func(b map[string]any) { b["expenseDate"] = "01/03/2026" }, "expenseDate"},
		"bad currency":        {func(b map[string]any) { b["currencyCode"] = "DOLLAR" }, "currencyCode"},
		"category not a uuid": {func(b map[string]any) { b["categoryID"] = "travel" }, "categoryID"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			body := valid()
			tc.mutate(body)
			w := s.do(http.MethodPost, "/api/v1/expenses", employeeID, body)
			s.Equal(http.StatusBadRequest, w.Code)
			var res handlers.ErrorResponse
			s.decode(w, &res)
			s.Contains(res.Error, tc.field)
		})
	}
	s.expenseService.AssertNotCalled(s.T(), "CreateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ExpenseHandlerTestSuite) TestCreateExpense_ServiceValidation() {
	employeeID := uuid.NewString()
	s.expenseService.On("CreateExpense", mock.Anything, mock.Anything, employeeID).
		Return(nil, apperrors.NewValidationFailedError("amount must not be negative")).Once()

	w := s.do(http.MethodPost, "/api/v1/expenses", employeeID, map[string]any{
		"amount":      -1,
		"description": "Refund",
		"expenseDate": "2026-03-01",
		"categoryID":  uuid.NewString(),
	})

	s.Equal(http.StatusBadRequest, w.Code)
	var res handlers.ErrorResponse
	s.decode(w, &res)
	s.Equal("amount must not be negative", res.Error)
}

func (s *ExpenseHandlerTestSuite) TestCreateExpense_RequiresToken() {
	w := s.do(http.MethodPost, "/api/v1/expenses", "", map[string]any{"amount": 1})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ExpenseHandlerTestSuite) TestListExpenses_PassesFilterAndPaging() {
	employeeID := uuid.NewString()
	expenses := []domain.Expense{*sampleExpense(employeeID, domain.ExpenseSubmitted)}

	s.expenseService.On("ListExpenses",
		mock.AnythingOfType("*context.valueCtx"),
		employeeID,
		dto.ListExpensesParams{Status: "submitted", Skip: 5, Limit: 10},
	).Return(expenses, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/expenses?status=submitted&skip=5&limit=10", employeeID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var res []dto.ExpenseResponse
	s.decode(w, &res)
	s.Len(res, 1)
	s.Equal(domain.ExpenseSubmitted, res[0].Status)
}

func (s *ExpenseHandlerTestSuite) TestListExpenses_EmptyIsArray() {
	employeeID := uuid.NewString()
	s.expenseService.On("ListExpenses", mock.Anything, employeeID, dto.ListExpensesParams{}).
		Return([]domain.Expense{}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/expenses", employeeID, nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *ExpenseHandlerTestSuite) TestListExpenses_InvalidQuery() {
	employeeID := uuid.NewString()

	w := s.do(http.MethodGet, "/api/v1/expenses?status=paid", employeeID, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/expenses?skip=-1", employeeID, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ExpenseHandlerTestSuite) TestGetExpense_WithApprovals() {
	employeeID := uuid.NewString()
	expense := sampleExpense(employeeID, domain.ExpenseSubmitted)
	expense.Approvals = []domain.Approval{
		domain.NewPendingApproval(uuid.NewString(), expense.ExpenseID, uuid.NewString(), employeeID, expense.CreatedAt),
	}
	expense.Category = &domain.Category{CategoryID: expense.CategoryID, Name: "Travel", IsActive: true}

	s.expenseService.On("GetExpense", mock.AnythingOfType("*context.valueCtx"), expense.ExpenseID, employeeID).
		Return(expense, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/expenses/"+expense.ExpenseID, employeeID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ExpenseWithApprovalsResponse
	s.decode(w, &res)
	s.Require().Len(res.Approvals, 1)
	s.Equal(domain.ApprovalPending, res.Approvals[0].Status)
	s.Require().NotNil(res.Category)
	s.Equal("Travel", res.Category.Name)
}

func (s *ExpenseHandlerTestSuite) TestGetExpense_NotVisible() {
	userID := uuid.NewString()
	expenseID := uuid.NewString()
	s.expenseService.On("GetExpense", mock.Anything, expenseID, userID).
		Return(nil, apperrors.NewNotFoundError("expense not found")).Once()

	w := s.do(http.MethodGet, "/api/v1/expenses/"+expenseID, userID, nil)

	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"error":"expense not found"}`, w.Body.String())
}

func (s *ExpenseHandlerTestSuite) TestUpdateExpense_Partial() {
	employeeID := uuid.NewString()
	expense := sampleExpense(employeeID, domain.ExpenseDraft)
	expense.Description = "Taxi to airport"

	s.expenseService.On("UpdateExpense",
		mock.AnythingOfType("*context.valueCtx"),
		expense.ExpenseID,
		mock.MatchedBy(func(req dto.UpdateExpenseRequest) bool {
			return req.Description != nil && *req.Description == "Taxi to airport" &&
				req.Amount == nil && req.CategoryID == nil
		}),
		employeeID,
	).Return(expense, nil).Once()

	w := s.do(http.MethodPut, "/api/v1/expenses/"+expense.ExpenseID, employeeID, map[string]any{
		"description": "Taxi to airport",
	})

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ExpenseResponse
	s.decode(w, &res)
	s.Equal("Taxi to airport", res.Description)
}

func (s *ExpenseHandlerTestSuite) TestUpdateExpense_NotDraft() {
	employeeID := uuid.NewString()
	expenseID := uuid.NewString()
	s.expenseService.On("UpdateExpense", mock.Anything, expenseID, mock.Anything, employeeID).
		Return(nil, apperrors.NewInvalidStateError("only draft expenses can be edited")).Once()

	w := s.do(http.MethodPut, "/api/v1/expenses/"+expenseID, employeeID, map[string]any{"projectCode": "P-1"})

	s.Equal(http.StatusConflict, w.Code)
}

func (s *ExpenseHandlerTestSuite) TestUpdateExpense_NotOwner() {
	userID := uuid.NewString()
	expenseID := uuid.NewString()
	s.expenseService.On("UpdateExpense", mock.Anything, expenseID, mock.Anything, userID).
		Return(nil, apperrors.NewForbiddenError("only the owner may edit this expense")).Once()

	w := s.do(http.MethodPut, "/api/v1/expenses/"+expenseID, userID, map[string]any{"projectCode": "P-1"})

	s.Equal(http.StatusForbidden, w.Code)
}

func (s *ExpenseHandlerTestSuite) TestSubmitExpense() {
	employeeID := uuid.NewString()
	expense := sampleExpense(employeeID, domain.ExpenseSubmitted)
	expense.Approvals = []domain.Approval{}

	s.expenseService.On("SubmitExpense", mock.AnythingOfType("*context.valueCtx"), expense.ExpenseID, employeeID).
		Return(expense, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/expenses/"+expense.ExpenseID+"/submit", employeeID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ExpenseWithApprovalsResponse
	s.decode(w, &res)
	s.Equal(domain.ExpenseSubmitted, res.Status)
	s.NotNil(res.Approvals)
	s.Empty(res.Approvals)
}

func (s *ExpenseHandlerTestSuite) TestSubmitExpense_Twice() {
	employeeID := uuid.NewString()
	expenseID := uuid.NewString()
	s.expenseService.On("SubmitExpense", mock.Anything, expenseID, employeeID).
		Return(nil, apperrors.NewInvalidStateError("only draft expenses can be submitted")).Once()

	w := s.do(http.MethodPost, "/api/v1/expenses/"+expenseID+"/submit", employeeID, nil)

	s.Equal(http.StatusConflict, w.Code)
}
