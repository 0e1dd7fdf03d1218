// Package workflow holds the internship approval state machine.
package workflow

import (
	"strings"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// Rule is one legal status change. Stage is the guard action the actor must pass.
type Rule struct {
	From            models.InternshipStatus
	To              models.InternshipStatus
	Action          models.ApprovalAction
	Stage           auth.Action
	RequiresComment bool
}

var rules = map[models.InternshipStatus][]Rule{}

func allow(from models.InternshipStatus, stage auth.Action, targets ...models.InternshipStatus) {
	for _, to := range targets {
		rules[from] = append(rules[from], Rule{
			From:            from,
			To:              to,
			Action:          actionFor(from, to),
			Stage:           stage,
			RequiresComment: RequiresComment(to),
		})
	}
}

func init() {
	allow(models.StatusPending, auth.ActionAdvisorReview,
		models.StatusAdvisorReview, models.StatusAdvisorApproved, models.StatusRejected, models.StatusRevisionRequested)
	allow(models.StatusAdvisorReview, auth.ActionAdvisorReview,
		models.StatusAdvisorApproved, models.StatusRejected, models.StatusRevisionRequested)
	allow(models.StatusAdvisorApproved, auth.ActionCoordinatorReview,
		models.StatusCoordinatorReview, models.StatusCoordinatorApproved, models.StatusRejected, models.StatusRevisionRequested)
	allow(models.StatusCoordinatorReview, auth.ActionCoordinatorReview,
		models.StatusCoordinatorApproved, models.StatusRejected, models.StatusRevisionRequested)
	// an approved internship can still be sent back before completion
	allow(models.StatusCoordinatorApproved, auth.ActionCoordinatorReview,
		models.StatusCompleted, models.StatusRevisionRequested)
	allow(models.StatusRevisionRequested, auth.ActionResubmit,
		models.StatusPending)
}

func actionFor(from, to models.InternshipStatus) models.ApprovalAction {
	switch to {
	case models.StatusAdvisorReview, models.StatusCoordinatorReview:
		return models.ActionStartReview
	case models.StatusAdvisorApproved, models.StatusCoordinatorApproved:
		return models.ActionApprove
	case models.StatusRejected:
		return models.ActionReject
	case models.StatusRevisionRequested:
		return models.ActionRequestRevision
	case models.StatusCompleted:
		return models.ActionComplete
	}
	if from == models.StatusRevisionRequested && to == models.StatusPending {
		return models.ActionResubmit
	}
	return ""
}

// Lookup returns the rule for from -> to, or an InvalidTransition error.
func Lookup(from, to models.InternshipStatus) (Rule, error) {
	for _, r := range rules[from] {
		if r.To == to {
			return r, nil
		}
	}
	return Rule{}, apperrors.NewInvalidTransitionError(string(from), string(to))
}

// Targets lists the statuses reachable from from. Terminal statuses have none.
func Targets(from models.InternshipStatus) []models.InternshipStatus {
	out := make([]models.InternshipStatus, 0, len(rules[from]))
	for _, r := range rules[from] {
		out = append(out, r.To)
	}
	return out
}

// RequiresComment reports whether entering to needs a non-empty comment.
func RequiresComment(to models.InternshipStatus) bool {
	return to == models.StatusRejected || to == models.StatusRevisionRequested
}

// ValidateComment fails when to needs a comment and comment is blank.
func ValidateComment(to models.InternshipStatus, comment string) error {
	if RequiresComment(to) && strings.TrimSpace(comment) == "" {
		return apperrors.NewValidationError("comment", "a comment is required to move an internship to "+string(to))
	}
	return nil
}

// StageOf returns the guard action owning transitions out of from.
func StageOf(from models.InternshipStatus) (auth.Action, bool) {
	r := rules[from]
	if len(r) == 0 {
		return "", false
	}
	return r[0].Stage, true
}
