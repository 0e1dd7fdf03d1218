package auth

import (
	"context"
	"errors"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/logger"
)

// Reader is the slice of the store the authorization service reads from.
type Reader interface {
	repositories.UserStore
	repositories.InternshipStore
}

// AuthorizationService resolves principals and internships from current persisted state
// and applies the guard to them. Every lookup failure is a denial.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// ResolvePrincipal loads the user and the roles they hold now.
func (s *AuthorizationService) ResolvePrincipal(ctx context.Context, users repositories.UserStore, userID int64) (Principal, error) {
	user, err := users.GetUser(ctx, userID)
	if err != nil {
		if apperrors.IsRetryable(err) {
			return Principal{}, err
		}
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			logger.Error().Err(err).Int64(logger.FieldActorID, userID).Msg("Error resolving principal")
		}
		return Principal{}, apperrors.NewForbiddenError("unable to resolve acting user")
	}

	p := PrincipalFromUser(user)
	if !p.resolved() {
		logger.Warn().Int64(logger.FieldActorID, userID).Msg("Principal has no usable roles")
		return Principal{}, apperrors.NewForbiddenError("acting user has no active roles")
	}
	return p, nil
}

// Require returns the acting role for action, or a forbidden error.
func (s *AuthorizationService) Require(p Principal, in *models.Internship, action Action) (models.Role, error) {
	role, ok := ActingRole(p, in, action)
	if !ok {
		logger.Debug().
			Int64(logger.FieldActorID, p.UserID).
			Str("action", string(action)).
			Msg("Guard denied action")
		return "", apperrors.NewForbiddenError("you do not have permission to " + describe(action) + " this internship")
	}
	return role, nil
}

// LoadForAction reads internship internshipID and the acting user, then checks that
// the user may view it and perform action. With lock set the internship row stays
// locked for the rest of the enclosing transaction.
func (s *AuthorizationService) LoadForAction(ctx context.Context, r Reader, userID, internshipID int64, action Action, lock bool) (Principal, *models.Internship, error) {
	var (
		in  *models.Internship
		err error
	)
	if lock {
		in, err = r.LockInternship(ctx, internshipID)
	} else {
		in, err = r.GetInternship(ctx, internshipID)
	}
	if err != nil {
		return Principal{}, nil, err
	}

	p, err := s.ResolvePrincipal(ctx, r, userID)
	if err != nil {
		return Principal{}, nil, err
	}

	if !CanView(p, in) {
		return Principal{}, nil, apperrors.NewForbiddenError("you do not have access to this internship")
	}
	if action != ActionView {
		if _, err := s.Require(p, in, action); err != nil {
			return Principal{}, nil, err
		}
	}
	return p, in, nil
}

func describe(action Action) string {
	switch action {
	case ActionAdvisorReview:
		return "review as advisor"
	case ActionCoordinatorReview:
		return "review as coordinator"
	case ActionResubmit:
		return "resubmit"
	case ActionAssignAdvisor:
		return "assign an advisor to"
	case ActionDelete:
		return "delete"
	case ActionAttachDocument:
		return "attach documents to"
	case ActionReviewReport:
		return "review reports of"
	}
	return "view"
}
