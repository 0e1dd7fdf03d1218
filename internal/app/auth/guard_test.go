package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/internflow/internal/app/models"
)

func ptr(v int64) *int64 { return &v }

func principal(id int64, roles ...models.Role) Principal {
	return Principal{UserID: id, Roles: roles}
}

func TestStudentSeesOnlyOwnInternships(t *testing.T) {
	for a := int64(1); a <= 5; a++ {
		for b := int64(1); b <= 5; b++ {
			in := &models.Internship{ID: 100 + b, StudentID: b, Status: models.StatusPending}
			student := principal(a, models.RoleStudent)

			assert.Equal(t, a == b, CanView(student, in), "student %d viewing internship of %d", a, b)
			assert.Equal(t, a == b, CanAct(student, in, ActionResubmit))
			assert.False(t, CanAct(student, in, ActionAdvisorReview))
		}
	}
}

func TestAdvisorScopedToAssignment(t *testing.T) {
	advisor := principal(10, models.RoleFacultyAdvisor)

	assigned := &models.Internship{StudentID: 1, AdvisorID: ptr(10)}
	other := &models.Internship{StudentID: 1, AdvisorID: ptr(11)}
	unassigned := &models.Internship{StudentID: 1}

	assert.True(t, CanView(advisor, assigned))
	assert.True(t, CanAct(advisor, assigned, ActionAdvisorReview))
	assert.False(t, CanView(advisor, other))
	assert.False(t, CanAct(advisor, other, ActionAdvisorReview))
	assert.False(t, CanView(advisor, unassigned))
	assert.False(t, CanAct(advisor, assigned, ActionCoordinatorReview))
}

func TestCoordinatorsAreNotScoped(t *testing.T) {
	in := &models.Internship{StudentID: 1, AdvisorID: ptr(10)}
	for _, role := range []models.Role{models.RoleDepartmentCoordinator, models.RoleUniversityCoordinator} {
		p := principal(20, role)
		assert.True(t, CanView(p, in))
		assert.True(t, CanAct(p, in, ActionCoordinatorReview))
		assert.True(t, CanAct(p, in, ActionAssignAdvisor))
		assert.False(t, CanAct(p, in, ActionAdvisorReview))
		assert.False(t, CanAct(p, in, ActionDelete))

		got, ok := ActingRole(p, in, ActionCoordinatorReview)
		assert.True(t, ok)
		assert.Equal(t, role, got)
	}
}

func TestAdminAdministersButDoesNotApprove(t *testing.T) {
	admin := principal(30, models.RoleAdmin)
	in := &models.Internship{StudentID: 1, AdvisorID: ptr(10)}

	assert.True(t, CanView(admin, in))
	assert.True(t, CanAct(admin, in, ActionDelete))
	for _, action := range []Action{ActionAdvisorReview, ActionCoordinatorReview, ActionResubmit, ActionAssignAdvisor} {
		assert.False(t, CanAct(admin, in, action), action)
	}
}

func TestFailsClosed(t *testing.T) {
	in := &models.Internship{StudentID: 1}

	assert.False(t, CanView(principal(1, models.RoleStudent), nil))
	assert.False(t, CanView(principal(1), in))
	assert.False(t, CanView(Principal{Roles: []models.Role{models.RoleAdmin}}, in))
	assert.False(t, CanAct(principal(1, models.RoleStudent), in, Action("unknown")))

	inactive := &models.User{ID: 1, IsActive: false, Roles: []models.Role{models.RoleStudent}}
	assert.False(t, CanView(PrincipalFromUser(inactive), in))
	assert.False(t, CanView(PrincipalFromUser(nil), in))

	detached := &models.User{ID: 1, IsActive: true, Roles: []models.Role{"FORMER_ROLE"}}
	assert.False(t, CanView(PrincipalFromUser(detached), in))
}

func TestScope(t *testing.T) {
	f, ok := Scope(principal(1, models.RoleStudent))
	assert.True(t, ok)
	assert.Equal(t, int64(1), *f.StudentID)

	f, ok = Scope(principal(10, models.RoleFacultyAdvisor))
	assert.True(t, ok)
	assert.Equal(t, int64(10), *f.AdvisorID)

	f, ok = Scope(principal(20, models.RoleUniversityCoordinator))
	assert.True(t, ok)
	assert.Nil(t, f.StudentID)
	assert.Nil(t, f.AdvisorID)

	f, ok = Scope(principal(5, models.RoleStudent, models.RoleFacultyAdvisor))
	assert.True(t, ok)
	assert.Nil(t, f.StudentID)
	assert.Nil(t, f.AdvisorID)
	assert.Equal(t, int64(5), *f.ParticipantID)

	_, ok = Scope(Principal{})
	assert.False(t, ok)
}

func TestReviewReportRoles(t *testing.T) {
	in := &models.Internship{StudentID: 1, AdvisorID: ptr(10)}

	role, ok := ActingRole(principal(10, models.RoleFacultyAdvisor), in, ActionReviewReport)
	assert.True(t, ok)
	assert.Equal(t, models.RoleFacultyAdvisor, role)

	role, ok = ActingRole(principal(20, models.RoleDepartmentCoordinator), in, ActionReviewReport)
	assert.True(t, ok)
	assert.Equal(t, models.RoleDepartmentCoordinator, role)

	assert.False(t, CanAct(principal(11, models.RoleFacultyAdvisor), in, ActionReviewReport))
	assert.False(t, CanAct(principal(1, models.RoleStudent), in, ActionReviewReport))
	assert.False(t, CanAct(principal(30, models.RoleAdmin), in, ActionReviewReport))
}
