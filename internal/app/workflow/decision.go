package workflow

import (
	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// Decision is a reviewer- or student-facing verb that resolves to a target status.
type Decision string

const (
	DecisionStartReview     Decision = "start-review"
	DecisionApprove         Decision = "approve"
	DecisionReject          Decision = "reject"
	DecisionRequestRevision Decision = "request-revision"
	DecisionResubmit        Decision = "resubmit"
	DecisionComplete        Decision = "complete"
)

// ParseDecision validates a decision name
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionStartReview, DecisionApprove, DecisionReject, DecisionRequestRevision, DecisionResubmit, DecisionComplete:
		return d, nil
	}
	return "", apperrors.NewValidationError("decision", "unknown decision "+s)
}

// FixedTarget returns the target for decisions that do not depend on who acts or on the current status.
func (d Decision) FixedTarget() (models.InternshipStatus, bool) {
	switch d {
	case DecisionReject:
		return models.StatusRejected, true
	case DecisionRequestRevision:
		return models.StatusRevisionRequested, true
	case DecisionResubmit:
		return models.StatusPending, true
	case DecisionComplete:
		return models.StatusCompleted, true
	}
	return "", false
}

// Target resolves d for principal p against an internship currently in from.
// Approval resolves by the approver's role, so a coordinator approving a PENDING
// internship resolves to COORDINATOR_APPROVED and fails the transition lookup.
// Rejections and revision requests by a reviewer of the other stage fail the same way.
func (d Decision) Target(p auth.Principal, from models.InternshipStatus) (models.InternshipStatus, error) {
	if to, ok := d.FixedTarget(); ok {
		if (d == DecisionReject || d == DecisionRequestRevision) && reviewsOtherStage(p, from) {
			return "", apperrors.NewInvalidTransitionError(string(from), string(to))
		}
		return to, nil
	}

	switch d {
	case DecisionApprove:
		stage, _ := StageOf(from)
		isAdvisor := p.HasRole(models.RoleFacultyAdvisor)
		switch {
		case isAdvisor && stage == auth.ActionAdvisorReview:
			return models.StatusAdvisorApproved, nil
		case p.IsCoordinator():
			return models.StatusCoordinatorApproved, nil
		case isAdvisor:
			return models.StatusAdvisorApproved, nil
		}
		return "", apperrors.NewForbiddenError("only advisors and coordinators can approve internships")

	case DecisionStartReview:
		switch from {
		case models.StatusPending:
			return models.StatusAdvisorReview, nil
		case models.StatusAdvisorApproved:
			return models.StatusCoordinatorReview, nil
		}
		return "", apperrors.NewInvalidTransitionError(string(from), "review")
	}

	return "", apperrors.NewValidationError("decision", "unknown decision "+string(d))
}

// reviewsOtherStage reports whether p reviews only at the stage that does not own from.
func reviewsOtherStage(p auth.Principal, from models.InternshipStatus) bool {
	stage, ok := StageOf(from)
	if !ok {
		return false
	}
	isAdvisor := p.HasRole(models.RoleFacultyAdvisor)
	switch stage {
	case auth.ActionAdvisorReview:
		return !isAdvisor && p.IsCoordinator()
	case auth.ActionCoordinatorReview:
		return !p.IsCoordinator() && isAdvisor
	}
	return false
}
