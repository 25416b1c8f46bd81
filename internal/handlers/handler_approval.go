package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

// approvalHandler handles the approver side of the expense workflow.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newApprovalHandler(as portssvc.ApprovalSvcFacade) *approvalHandler {
	return &approvalHandler{
		approvalService: as,
	}
}

// RegisterApprovalRoutes registers routes related to approvals.
func RegisterApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newApprovalHandler(approvalService)

	approvals := rg.Group("/approvals")
	{
		approvals.GET("/pending", h.listPending)
		approvals.POST("/:approvalID/approve", h.approve)
		approvals.POST("/:approvalID/reject", h.reject)
	}
}

// listPending godoc
// @Summary List expenses awaiting my decision
// @Description Lists submitted expenses with a pending approval assigned to the caller
// @Tags approvals
// @Produce json
// @Success 200 {array} dto.ExpenseWithApprovalsResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/pending [get]
func (h *approvalHandler) listPending(c *gin.Context) {
	approverID, ok := requireUserID(c)
	if !ok {
		return
	}

	expenses, err := h.approvalService.ListPendingApprovals(c.Request.Context(), approverID)
	if err != nil {
		handleServiceError(c, err, "list pending approvals")
		return
	}

	c.JSON(http.StatusOK, dto.ToListExpenseWithApprovalsResponse(expenses))
}

// approve godoc
// @Summary Approve an expense
// @Description Approves a pending approval and its expense. Comments are optional and may be sent as JSON or as a query parameter.
// @Tags approvals
// @Accept json
// @Produce json
// @Param approvalID path string true "Approval ID"
// @Param comments query string false "Approver comments"
// @Param decision body dto.DecisionRequest false "Approver comments"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Approval already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/{approvalID}/approve [post]
func (h *approvalHandler) approve(c *gin.Context) {
	approverID, ok := requireUserID(c)
	if !ok {
		return
	}
	req, ok := bindDecision(c)
	if !ok {
		return
	}

	approvalID := c.Param("approvalID")
	if _, err := h.approvalService.ApproveExpense(c.Request.Context(), approvalID, approverID, req.Comments); err != nil {
		handleServiceError(c, err, "approve expense")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense approved"})
}

// reject godoc
// @Summary Reject an expense
// @Description Rejects a pending approval and its expense. Comments are required and become the rejection reason.
// @Tags approvals
// @Accept json
// @Produce json
// @Param approvalID path string true "Approval ID"
// @Param comments query string false "Rejection reason"
// @Param decision body dto.DecisionRequest false "Rejection reason"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse "Missing comments"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Approval already decided"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /approvals/{approvalID}/reject [post]
func (h *approvalHandler) reject(c *gin.Context) {
	approverID, ok := requireUserID(c)
	if !ok {
		return
	}
	req, ok := bindDecision(c)
	if !ok {
		return
	}

	var comments string
	if req.Comments != nil {
		comments = *req.Comments
	}

	approvalID := c.Param("approvalID")
	if _, err := h.approvalService.RejectExpense(c.Request.Context(), approvalID, approverID, comments); err != nil {
		handleServiceError(c, err, "reject expense")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Expense rejected"})
}

// bindDecision reads comments from the query string and then from a JSON body
// if one was sent. A body value wins over the query value.
func bindDecision(c *gin.Context) (dto.DecisionRequest, bool) {
	var req dto.DecisionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return req, false
	}
	if c.Request.ContentLength == 0 {
		return req, true
	}

	var body dto.DecisionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind decision body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingErrorMessage(err)})
		return req, false
	}
	if body.Comments != nil {
		req.Comments = body.Comments
	}
	return req, true
}
