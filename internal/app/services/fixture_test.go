package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/notify"
	"github.com/yigit/internflow/internal/app/repositories/memory"
	"github.com/yigit/internflow/internal/pkg/filestorage"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(events ...notify.Event) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
	return len(events)
}

func (d *recordingDispatcher) take() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.events
	d.events = nil
	return out
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	sent  *recordingDispatcher

	workflow      WorkflowService
	internships   InternshipService
	approvals     ApprovalService
	notifications NotificationService

	student      *models.User
	otherStudent *models.User
	advisor      *models.User
	otherAdvisor *models.User
	dept         *models.User
	univ         *models.User
	admin        *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithDispatcher(t, nil)
}

func newFixtureWithDispatcher(t *testing.T, dispatcher EventDispatcher) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		store: memory.NewStore(),
		sent:  &recordingDispatcher{},
	}
	if dispatcher == nil {
		dispatcher = f.sent
	}

	files, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	authz := auth.NewAuthorizationService()
	planner := notify.NewPlanner(f.store, f.store)
	f.workflow = NewWorkflowService(f.store, authz, planner, dispatcher)
	f.internships = NewInternshipService(f.store, authz, files, planner, dispatcher)
	f.approvals = NewApprovalService(f.store, authz)
	f.notifications = NewNotificationService(f.store, authz)

	f.student = f.user(t, "student@uni.edu", models.RoleStudent)
	f.otherStudent = f.user(t, "other.student@uni.edu", models.RoleStudent)
	f.advisor = f.user(t, "advisor@uni.edu", models.RoleFacultyAdvisor)
	f.otherAdvisor = f.user(t, "other.advisor@uni.edu", models.RoleFacultyAdvisor)
	f.dept = f.user(t, "dept@uni.edu", models.RoleDepartmentCoordinator)
	f.univ = f.user(t, "univ@uni.edu", models.RoleUniversityCoordinator)
	f.admin = f.user(t, "admin@uni.edu", models.RoleAdmin)
	return f
}

func (f *fixture) user(t *testing.T, email string, roles ...models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, FirstName: "Test", LastName: "User", IsActive: true, Roles: roles}
	_, err := f.store.CreateUser(f.ctx, u)
	require.NoError(t, err)
	return u
}

func validRequest() *dto.CreateInternshipRequest {
	return &dto.CreateInternshipRequest{
		CompanyName:    "Acme Corp",
		CompanyAddress: "Maslak, Istanbul",
		CompanyPhone:   "+90 212 555 0000",
		StartDate:      "2025-07-01",
		EndDate:        "2025-08-26",
		WorkDays:       40,
		Type:           string(models.InternshipCompulsory),
	}
}

// internship creates an internship for owner through the service, optionally with an advisor set directly
func (f *fixture) internship(t *testing.T, owner *models.User, advisor *models.User) *models.Internship {
	t.Helper()
	in, err := f.internships.CreateInternship(f.ctx, owner.ID, validRequest())
	require.NoError(t, err)
	if advisor != nil {
		require.NoError(t, f.store.UpdateInternshipAdvisor(f.ctx, in.ID, advisor.ID))
		in.AdvisorID = &advisor.ID
	}
	return in
}

func (f *fixture) status(t *testing.T, id int64) models.InternshipStatus {
	t.Helper()
	in, err := f.store.GetInternship(f.ctx, id)
	require.NoError(t, err)
	return in.Status
}

func (f *fixture) ledger(t *testing.T, id int64) []*models.ApprovalRecord {
	t.Helper()
	records, err := f.store.ListApprovalsByInternship(f.ctx, id)
	require.NoError(t, err)
	return records
}

// requireConsistent checks that the status matches the newest ledger entry
func (f *fixture) requireConsistent(t *testing.T, id int64) {
	t.Helper()
	records := f.ledger(t, id)
	want := models.InitialStatus
	if len(records) > 0 {
		want = records[0].ResultStatus
	}
	require.Equal(t, want, f.status(t, id))
}

func uploadHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func recipients(events []notify.Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.RecipientID)
	}
	return ids
}
