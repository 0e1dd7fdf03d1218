package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/metrics"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/notify"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/app/workflow"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/logger"
)

// WorkflowService defines the interface for status transitions
type WorkflowService interface {
	// Transition moves the internship to requested, the raw inbound contract
	Transition(ctx context.Context, actorID, internshipID int64, requested models.InternshipStatus, comment string) (*dto.TransitionResponse, error)
	// Decide resolves decision against the actor and the current status, then transitions
	Decide(ctx context.Context, actorID, internshipID int64, decision workflow.Decision, comment string) (*dto.TransitionResponse, error)
}

// targetFunc picks the target status once the principal and current status are known
type targetFunc func(p auth.Principal, from models.InternshipStatus) (models.InternshipStatus, error)

// workflowServiceImpl implements WorkflowService
type workflowServiceImpl struct {
	store      repositories.Store
	authz      *auth.AuthorizationService
	planner    *notify.Planner
	dispatcher EventDispatcher
	now        func() time.Time
	logger     zerolog.Logger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	store repositories.Store,
	authz *auth.AuthorizationService,
	planner *notify.Planner,
	dispatcher EventDispatcher,
) WorkflowService {
	return &workflowServiceImpl{
		store:      store,
		authz:      authz,
		planner:    planner,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.Component("workflow"),
	}
}

// Transition applies a requested target status
func (s *workflowServiceImpl) Transition(ctx context.Context, actorID, internshipID int64, requested models.InternshipStatus, comment string) (*dto.TransitionResponse, error) {
	comment = strings.TrimSpace(comment)
	if err := workflow.ValidateComment(requested, comment); err != nil {
		return nil, err
	}
	return s.apply(ctx, actorID, internshipID, comment, func(auth.Principal, models.InternshipStatus) (models.InternshipStatus, error) {
		return requested, nil
	})
}

// Decide applies a named decision
func (s *workflowServiceImpl) Decide(ctx context.Context, actorID, internshipID int64, decision workflow.Decision, comment string) (*dto.TransitionResponse, error) {
	comment = strings.TrimSpace(comment)
	if to, ok := decision.FixedTarget(); ok {
		if err := workflow.ValidateComment(to, comment); err != nil {
			return nil, err
		}
	}
	return s.apply(ctx, actorID, internshipID, comment, decision.Target)
}

// apply runs every check and both writes inside one transaction holding the
// internship row lock. Notifications go out only after commit.
func (s *workflowServiceImpl) apply(ctx context.Context, actorID, internshipID int64, comment string, target targetFunc) (*dto.TransitionResponse, error) {
	var (
		record *models.ApprovalRecord
		after  *models.Internship
	)

	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, in, err := s.authz.LoadForAction(ctx, tx, actorID, internshipID, auth.ActionView, true)
		if err != nil {
			return err
		}

		to, err := target(p, in.Status)
		if err != nil {
			return err
		}

		rule, err := workflow.Lookup(in.Status, to)
		if err != nil {
			return err
		}

		role, err := s.authz.Require(p, in, rule.Stage)
		if err != nil {
			return err
		}

		// targets resolved from a decision are only known here
		if err := workflow.ValidateComment(rule.To, comment); err != nil {
			return err
		}

		if err := tx.UpdateInternshipStatus(ctx, in.ID, rule.To); err != nil {
			return err
		}

		record = &models.ApprovalRecord{
			InternshipID: in.ID,
			ApproverID:   p.UserID,
			ApproverRole: role,
			Action:       rule.Action,
			FromStatus:   rule.From,
			ResultStatus: rule.To,
			Comment:      optionalComment(comment),
			ActionAt:     s.now().UTC(),
		}
		if _, err := tx.AppendApproval(ctx, record); err != nil {
			return err
		}

		in.Status = rule.To
		after = in
		return nil
	})
	if err != nil {
		metrics.RecordTransitionFailure(apperrors.Code(err))
		s.logger.Debug().Err(err).
			Int64(logger.FieldActorID, actorID).
			Int64(logger.FieldInternshipID, internshipID).
			Msg("Transition not applied")
		return nil, err
	}

	metrics.RecordTransition(string(record.FromStatus), string(record.ResultStatus))
	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, internshipID).
		Str(logger.FieldFrom, string(record.FromStatus)).
		Str(logger.FieldTo, string(record.ResultStatus)).
		Int64(logger.FieldLedgerEntryID, record.ID).
		Msg("Transition committed")

	s.notifyTransition(ctx, after, record)

	return &dto.TransitionResponse{
		InternshipID:  internshipID,
		Status:        record.ResultStatus,
		LedgerEntryID: record.ID,
	}, nil
}

// notifyTransition never fails the caller: the transition has already committed.
func (s *workflowServiceImpl) notifyTransition(ctx context.Context, in *models.Internship, record *models.ApprovalRecord) {
	ctx, cancel := detach(ctx)
	defer cancel()

	events, err := s.planner.ForTransition(ctx, in, record)
	if err != nil {
		s.logger.Warn().Err(err).
			Int64(logger.FieldInternshipID, in.ID).
			Int64(logger.FieldLedgerEntryID, record.ID).
			Msg("Could not compute notification recipients")
		return
	}
	s.dispatcher.Dispatch(events...)
}
