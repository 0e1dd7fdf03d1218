package auth

import (
	"github.com/yigit/internflow/internal/app/models"
)

// Action is something a principal may attempt on an internship
type Action string

const (
	ActionView              Action = "view"
	ActionAdvisorReview     Action = "advisor_review"
	ActionCoordinatorReview Action = "coordinator_review"
	ActionResubmit          Action = "resubmit"
	ActionAssignAdvisor     Action = "assign_advisor"
	ActionDelete            Action = "delete"
	ActionAttachDocument    Action = "attach_document"
	ActionReviewReport      Action = "review_report"
)

// Principal is the acting user with the roles resolved for this request.
type Principal struct {
	UserID int64
	Roles  []models.Role
}

// PrincipalFromUser builds a principal from a freshly loaded user.
// Inactive users and nil users yield a principal with no roles, which every check denies.
func PrincipalFromUser(u *models.User) Principal {
	if u == nil || !u.IsActive {
		return Principal{}
	}
	roles := make([]models.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r.Valid() {
			roles = append(roles, r)
		}
	}
	return Principal{UserID: u.ID, Roles: roles}
}

// HasRole reports whether the principal holds role
func (p Principal) HasRole(role models.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsCoordinator reports whether the principal holds either coordinator role
func (p Principal) IsCoordinator() bool {
	return p.HasRole(models.RoleDepartmentCoordinator) || p.HasRole(models.RoleUniversityCoordinator)
}

func (p Principal) resolved() bool {
	return p.UserID != 0 && len(p.Roles) > 0
}

// CanView answers whether p may observe internship in.
// Students see their own, advisors the ones assigned to them, coordinators and admins everything.
func CanView(p Principal, in *models.Internship) bool {
	_, ok := viewingRole(p, in)
	return ok
}

// CanAct answers whether p may perform action on internship in.
// It is a pure function of the principal's roles and the internship's current relationships.
func CanAct(p Principal, in *models.Internship, action Action) bool {
	_, ok := ActingRole(p, in, action)
	return ok
}

// ActingRole returns the role under which p would perform action on in.
// The role is what the ledger records as the approver role.
func ActingRole(p Principal, in *models.Internship, action Action) (models.Role, bool) {
	if in == nil || !p.resolved() {
		return "", false
	}

	switch action {
	case ActionView:
		return viewingRole(p, in)
	case ActionAdvisorReview:
		if p.HasRole(models.RoleFacultyAdvisor) && in.IsAdvisedBy(p.UserID) {
			return models.RoleFacultyAdvisor, true
		}
	case ActionCoordinatorReview, ActionAssignAdvisor:
		return coordinatorRole(p)
	case ActionResubmit, ActionAttachDocument:
		if p.HasRole(models.RoleStudent) && in.StudentID == p.UserID {
			return models.RoleStudent, true
		}
	case ActionReviewReport:
		if p.HasRole(models.RoleFacultyAdvisor) && in.IsAdvisedBy(p.UserID) {
			return models.RoleFacultyAdvisor, true
		}
		return coordinatorRole(p)
	case ActionDelete:
		if p.HasRole(models.RoleAdmin) {
			return models.RoleAdmin, true
		}
	}
	return "", false
}

func viewingRole(p Principal, in *models.Internship) (models.Role, bool) {
	if in == nil || !p.resolved() {
		return "", false
	}
	if p.HasRole(models.RoleAdmin) {
		return models.RoleAdmin, true
	}
	if role, ok := coordinatorRole(p); ok {
		return role, true
	}
	if p.HasRole(models.RoleFacultyAdvisor) && in.IsAdvisedBy(p.UserID) {
		return models.RoleFacultyAdvisor, true
	}
	if p.HasRole(models.RoleStudent) && in.StudentID == p.UserID {
		return models.RoleStudent, true
	}
	return "", false
}

// coordinatorRole prefers the department coordinator role when both are held.
func coordinatorRole(p Principal) (models.Role, bool) {
	if p.HasRole(models.RoleDepartmentCoordinator) {
		return models.RoleDepartmentCoordinator, true
	}
	if p.HasRole(models.RoleUniversityCoordinator) {
		return models.RoleUniversityCoordinator, true
	}
	return "", false
}

// Scope returns the listing filter matching what p may view.
// ok is false when p may view nothing.
func Scope(p Principal) (filter models.InternshipFilter, ok bool) {
	if !p.resolved() {
		return models.InternshipFilter{}, false
	}
	if p.HasRole(models.RoleAdmin) || p.IsCoordinator() {
		return models.InternshipFilter{}, true
	}
	id := p.UserID
	if p.HasRole(models.RoleFacultyAdvisor) && p.HasRole(models.RoleStudent) {
		return models.InternshipFilter{ParticipantID: &id}, true
	}
	if p.HasRole(models.RoleFacultyAdvisor) {
		return models.InternshipFilter{AdvisorID: &id}, true
	}
	if p.HasRole(models.RoleStudent) {
		return models.InternshipFilter{StudentID: &id}, true
	}
	return models.InternshipFilter{}, false
}
