package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ApprovalHandlerTestSuite struct {
	handlerSuite
}

func TestApprovalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerTestSuite))
}

func decided(status domain.ApprovalStatus) *domain.Approval {
	return &domain.Approval{ApprovalID: uuid.NewString(), ExpenseID: uuid.NewString(), Status: status}
}

func (s *ApprovalHandlerTestSuite) TestListPending() {
	approverID := uuid.NewString()
	expense := sampleExpense(uuid.NewString(), domain.ExpenseSubmitted)
	expense.Approvals = []domain.Approval{
		domain.NewPendingApproval(uuid.NewString(), expense.ExpenseID, approverID, expense.EmployeeID, expense.CreatedAt),
	}

	s.approvalService.On("ListPendingApprovals", mock.AnythingOfType("*context.valueCtx"), approverID).
		Return([]domain.Expense{*expense}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/approvals/pending", approverID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	var res []dto.ExpenseWithApprovalsResponse
	s.decode(w, &res)
	s.Require().Len(res, 1)
	s.Equal(expense.ExpenseID, res[0].ExpenseID)
	s.Require().Len(res[0].Approvals, 1)
	s.Equal(approverID, res[0].Approvals[0].ApproverID)
}

func (s *ApprovalHandlerTestSuite) TestApprove_WithoutComments() {
	approverID := uuid.NewString()
	approvalID := uuid.NewString()
	s.approvalService.On("ApproveExpense", mock.AnythingOfType("*context.valueCtx"), approvalID, approverID, (*string)(nil)).
		Return(decided(domain.ApprovalApproved), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/approve", approverID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"message":"Expense approved"}`, w.Body.String())
}

func (s *ApprovalHandlerTestSuite) TestApprove_CommentsFromBody() {
	approverID := uuid.NewString()
	approvalID := uuid.NewString()
	s.approvalService.On("ApproveExpense", mock.Anything, approvalID, approverID,
		mock.MatchedBy(func(c *string) bool { return c != nil && *c == "looks fine" }),
	).Return(decided(domain.ApprovalApproved), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/approve", approverID, map[string]any{"comments": "looks fine"})

	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *ApprovalHandlerTestSuite) TestApprove_CommentsFromQuery() {
	approverID := uuid.NewString()
	approvalID := uuid.NewString()
	s.approvalService.On("ApproveExpense", mock.Anything, approvalID, approverID,
		mock.MatchedBy(func(c *string) bool { return c != nil && *c == "ok" }),
	).Return(decided(domain.ApprovalApproved), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/approve?comments=ok", approverID, nil)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *ApprovalHandlerTestSuite) TestApprove_MalformedBody() {
	approverID := uuid.NewString()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+uuid.NewString()+"/approve", approverID, "{not json")

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ApprovalHandlerTestSuite) TestApprove_ErrorMapping() {
	approverID := uuid.NewString()
	cases := map[string]struct {
		err    error
		status int
	}{
		"unknown or not visible": {apperrors.NewNotFoundError("approval not found"), http.StatusNotFound},
		"submitter deciding":     {apperrors.NewForbiddenError("only the designated approver may decide this expense"), http.StatusForbidden},
		"already decided":        {apperrors.NewInvalidStateError("approval is no longer pending"), http.StatusConflict},
		"store failure":          {errors.New("connection reset"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			approvalID := uuid.NewString()
			s.approvalService.On("ApproveExpense", mock.Anything, approvalID, approverID, (*string)(nil)).
				Return(nil, tc.err).Once()

			w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/approve", approverID, nil)

			s.Equal(tc.status, w.Code)
			s.NotContains(w.Body.String(), "connection reset")
		})
	}
}

func (s *ApprovalHandlerTestSuite) TestReject_WithReason() {
	approverID := uuid.NewString()
	approvalID := uuid.NewString()
	s.approvalService.On("RejectExpense", mock.AnythingOfType("*context.valueCtx"), approvalID, approverID, "missing receipt").
		Return(decided(domain.ApprovalRejected), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/reject", approverID, map[string]any{"comments": "missing receipt"})

	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"message":"Expense rejected"}`, w.Body.String())
}

func (s *ApprovalHandlerTestSuite) TestReject_WithoutReason() {
	approverID := uuid.NewString()
	approvalID := uuid.NewString()
	s.approvalService.On("RejectExpense", mock.Anything, approvalID, approverID, "").
		Return(nil, apperrors.NewValidationFailedError("comments are required when rejecting an expense")).Once()

	w := s.do(http.MethodPost, "/api/v1/approvals/"+approvalID+"/reject", approverID, nil)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "comments are required")
}

func (s *ApprovalHandlerTestSuite) TestDecisionsRequireToken() {
	w := s.do(http.MethodPost, "/api/v1/approvals/"+uuid.NewString()+"/approve", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/approvals/pending", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}
