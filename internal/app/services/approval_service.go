package services

import (
	"context"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
)

// ApprovalService defines read access to the approval ledger
type ApprovalService interface {
	// ListApprovals returns an internship's ledger, newest first
	ListApprovals(ctx context.Context, actorID, internshipID int64) ([]*models.ApprovalRecord, error)
	// LatestApproval returns apperrors.ErrApprovalNotFound for an empty ledger
	LatestApproval(ctx context.Context, actorID, internshipID int64) (*models.ApprovalRecord, error)
	// ListMyDecisions returns the entries written by the actor
	ListMyDecisions(ctx context.Context, actorID int64) ([]*models.ApprovalRecord, error)
}

// approvalServiceImpl implements ApprovalService
type approvalServiceImpl struct {
	store repositories.Store
	authz *auth.AuthorizationService
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(store repositories.Store, authz *auth.AuthorizationService) ApprovalService {
	return &approvalServiceImpl{
		store: store,
		authz: authz,
	}
}

// ListApprovals retrieves the ledger of a viewable internship
func (s *approvalServiceImpl) ListApprovals(ctx context.Context, actorID, internshipID int64) ([]*models.ApprovalRecord, error) {
	if _, _, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionView, false); err != nil {
		return nil, err
	}
	return s.store.ListApprovalsByInternship(ctx, internshipID)
}

// LatestApproval retrieves the newest ledger entry of a viewable internship
func (s *approvalServiceImpl) LatestApproval(ctx context.Context, actorID, internshipID int64) (*models.ApprovalRecord, error) {
	if _, _, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionView, false); err != nil {
		return nil, err
	}
	return s.store.LatestApproval(ctx, internshipID)
}

// ListMyDecisions retrieves the entries the actor wrote
func (s *approvalServiceImpl) ListMyDecisions(ctx context.Context, actorID int64) ([]*models.ApprovalRecord, error) {
	p, err := s.authz.ResolvePrincipal(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListApprovalsByApprover(ctx, p.UserID)
}
