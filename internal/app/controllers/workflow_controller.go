package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/services"
	"github.com/yigit/internflow/internal/app/workflow"
	"github.com/yigit/internflow/internal/middleware"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// WorkflowController moves internships through the approval chain
type WorkflowController struct {
	workflowService services.WorkflowService
	approvalService services.ApprovalService
	logger          zerolog.Logger
}

// NewWorkflowController creates a new WorkflowController
func NewWorkflowController(workflowService services.WorkflowService, approvalService services.ApprovalService, logger zerolog.Logger) *WorkflowController {
	return &WorkflowController{
		workflowService: workflowService,
		approvalService: approvalService,
		logger:          logger,
	}
}

// Transition godoc
// @Summary Request a status change
// @Description Moves the internship to the requested status when the caller holds the stage's role
// @Tags workflow
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param request body dto.TransitionRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.TransitionResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail} "Comment missing"
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail} "Transition not allowed from the current status"
// @Failure 503 {object} dto.APIResponse{error=dto.ErrorDetail} "Retry later"
// @Router /internships/{id}/transitions [post]
func (c *WorkflowController) Transition(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	status := models.InternshipStatus(req.Status)
	if !status.Valid() {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("status", "unknown status "+req.Status))
		return
	}

	resp, err := c.workflowService.Transition(ctx.Request.Context(), userID, id, status, req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Decide godoc
// @Summary Record a review decision
// @Description start-review, approve, reject, request-revision, resubmit or complete
// @Tags workflow
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param decision path string true "Decision"
// @Param request body dto.DecisionRequest false "Reviewer comment"
// @Success 200 {object} dto.APIResponse{data=dto.TransitionResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/decisions/{decision} [post]
func (c *WorkflowController) Decide(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	decision, err := workflow.ParseDecision(ctx.Param("decision"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.DecisionRequest
	if ctx.Request.ContentLength != 0 && !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.workflowService.Decide(ctx.Request.Context(), userID, id, decision, req.Comment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListApprovals godoc
// @Summary Approval history of an internship
// @Description Ledger entries, newest first
// @Tags workflow
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApprovalListResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/approvals [get]
func (c *WorkflowController) ListApprovals(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	records, err := c.approvalService.ListApprovals(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApprovalListResponse{Approvals: records}))
}

// LatestApproval godoc
// @Summary Most recent ledger entry of an internship
// @Tags workflow
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=models.ApprovalRecord}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/approvals/latest [get]
func (c *WorkflowController) LatestApproval(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	record, err := c.approvalService.LatestApproval(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(record))
}

// MyDecisions godoc
// @Summary Ledger entries recorded by the caller
// @Tags workflow
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.APIResponse{data=dto.ApprovalListResponse}
// @Router /approvals/mine [get]
func (c *WorkflowController) MyDecisions(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	records, err := c.approvalService.ListMyDecisions(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApprovalListResponse{Approvals: records}))
}
