package services

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/notify"
	"github.com/yigit/internflow/internal/app/workflow"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

func TestCreateInternship(t *testing.T) {
	f := newFixture(t)

	in, err := f.internships.CreateInternship(f.ctx, f.student.ID, validRequest())
	require.NoError(t, err)
	assert.Equal(t, f.student.ID, in.StudentID)
	assert.Equal(t, models.StatusPending, in.Status)
	assert.Nil(t, in.AdvisorID)

	_, err = f.internships.CreateInternship(f.ctx, f.advisor.ID, validRequest())
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	reversed := validRequest()
	reversed.StartDate, reversed.EndDate = reversed.EndDate, reversed.StartDate
	_, err = f.internships.CreateInternship(f.ctx, f.student.ID, reversed)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	noDays := validRequest()
	noDays.WorkDays = 0
	_, err = f.internships.CreateInternship(f.ctx, f.student.ID, noDays)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	iban := "TR33 0006 1005 1978 6457 8413 26"
	unpaid := validRequest()
	unpaid.IBAN = &iban
	_, err = f.internships.CreateInternship(f.ctx, f.student.ID, unpaid)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	paid := validRequest()
	paid.IsPaid = true
	paid.IBAN = &iban
	in, err = f.internships.CreateInternship(f.ctx, f.student.ID, paid)
	require.NoError(t, err)
	require.NotNil(t, in.IBAN)
	assert.Equal(t, "TR330006100519786457841326", *in.IBAN)
}

func TestGetInternshipDistinguishesNotFoundFromForbidden(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, f.advisor)

	got, err := f.internships.GetInternship(f.ctx, f.student.ID, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)

	_, err = f.internships.GetInternship(f.ctx, f.otherStudent.ID, in.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.internships.GetInternship(f.ctx, f.otherAdvisor.ID, in.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.internships.GetInternship(f.ctx, f.student.ID, in.ID+100)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	for _, viewer := range []*models.User{f.advisor, f.dept, f.univ, f.admin} {
		_, err := f.internships.GetInternship(f.ctx, viewer.ID, in.ID)
		assert.NoError(t, err, viewer.Email)
	}
}

func TestListInternshipsIsScoped(t *testing.T) {
	f := newFixture(t)
	mine := f.internship(t, f.student, f.advisor)
	theirs := f.internship(t, f.otherStudent, f.otherAdvisor)
	_, err := f.workflow.Decide(f.ctx, f.otherAdvisor.ID, theirs.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)

	ids := func(actor int64, req *dto.ListInternshipsRequest) []int64 {
		res, err := f.internships.ListInternships(f.ctx, actor, req)
		require.NoError(t, err)
		out := make([]int64, 0, len(res.Internships))
		for _, in := range res.Internships {
			out = append(out, in.ID)
		}
		assert.Equal(t, len(out), res.Count)
		return out
	}

	assert.Equal(t, []int64{mine.ID}, ids(f.student.ID, nil))
	assert.Equal(t, []int64{theirs.ID}, ids(f.otherAdvisor.ID, nil))
	assert.ElementsMatch(t, []int64{mine.ID, theirs.ID}, ids(f.dept.ID, nil))
	assert.ElementsMatch(t, []int64{mine.ID, theirs.ID}, ids(f.admin.ID, nil))
	assert.Equal(t, []int64{theirs.ID}, ids(f.dept.ID, &dto.ListInternshipsRequest{Status: "advisor_approved"}))

	_, err = f.internships.ListInternships(f.ctx, f.dept.ID, &dto.ListInternshipsRequest{Status: "DONE"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListInternshipsStudentAdvisor(t *testing.T) {
	f := newFixture(t)
	ta := f.user(t, "ta@uni.edu", models.RoleStudent, models.RoleFacultyAdvisor)
	own := f.internship(t, ta, f.advisor)
	advised := f.internship(t, f.student, ta)
	f.internship(t, f.otherStudent, f.otherAdvisor)

	_, err := f.internships.GetInternship(f.ctx, ta.ID, own.ID)
	require.NoError(t, err)

	res, err := f.internships.ListInternships(f.ctx, ta.ID, nil)
	require.NoError(t, err)
	got := make([]int64, 0, len(res.Internships))
	for _, in := range res.Internships {
		got = append(got, in.ID)
	}
	assert.ElementsMatch(t, []int64{own.ID, advised.ID}, got)
}

func TestAssignAdvisor(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, nil)

	// nobody advises it yet, so no advisor can act
	_, err := f.workflow.Decide(f.ctx, f.advisor.ID, in.ID, workflow.DecisionApprove, "")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.internships.AssignAdvisor(f.ctx, f.student.ID, in.ID, f.advisor.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.internships.AssignAdvisor(f.ctx, f.dept.ID, in.ID, f.otherStudent.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	f.sent.take()
	res, err := f.internships.AssignAdvisor(f.ctx, f.dept.ID, in.ID, f.advisor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, res.Status)

	records := f.ledger(t, in.ID)
	require.Len(t, records, 1)
	assert.Equal(t, models.ActionAssignAdvisor, records[0].Action)
	assert.Equal(t, models.StatusPending, records[0].FromStatus)
	assert.Equal(t, models.StatusPending, records[0].ResultStatus)
	assert.Equal(t, models.RoleDepartmentCoordinator, records[0].ApproverRole)
	f.requireConsistent(t, in.ID)

	events := f.sent.take()
	assert.Equal(t, []int64{f.advisor.ID, f.student.ID}, recipients(events))
	assert.Equal(t, notify.KindAdvisorAssigned, events[0].Kind)

	_, err = f.workflow.Decide(f.ctx, f.advisor.ID, in.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)

	_, err = f.workflow.Decide(f.ctx, f.dept.ID, in.ID, workflow.DecisionReject, "duplicate application")
	require.NoError(t, err)
	_, err = f.internships.AssignAdvisor(f.ctx, f.dept.ID, in.ID, f.otherAdvisor.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestDeleteInternshipCascades(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, f.advisor)
	_, err := f.workflow.Decide(f.ctx, f.advisor.ID, in.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)
	_, err = f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "form.pdf", []byte("%PDF")))
	require.NoError(t, err)

	err = f.internships.DeleteInternship(f.ctx, f.dept.ID, in.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	f.sent.take()
	require.NoError(t, f.internships.DeleteInternship(f.ctx, f.admin.ID, in.ID))

	_, err = f.store.GetInternship(f.ctx, in.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Empty(t, f.ledger(t, in.ID))
	docs, err := f.store.ListDocuments(f.ctx, in.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	events := f.sent.take()
	assert.Equal(t, []int64{f.advisor.ID}, recipients(events))
	assert.Equal(t, notify.KindDeleted, events[0].Kind)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, f.advisor)

	doc, err := f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "Acceptance.PDF", []byte("%PDF-1.7")))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.EqualValues(t, 8, doc.FileSize)

	_, err = f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "virus.exe", []byte("MZ")))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.internships.AttachDocument(f.ctx, f.advisor.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "notes.docx", []byte("PK")))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.internships.AttachDocument(f.ctx, f.otherStudent.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "notes.docx", []byte("PK")))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	docs, err := f.internships.ListDocuments(f.ctx, f.advisor.ID, in.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, rc, err := f.internships.OpenDocument(f.ctx, f.dept.ID, in.ID, doc.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
	assert.Equal(t, "Acceptance.PDF", got.FileName)

	_, _, err = f.internships.OpenDocument(f.ctx, f.otherStudent.ID, in.ID, doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, _, err = f.internships.OpenDocument(f.ctx, f.student.ID, in.ID, doc.ID+10)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.workflow.Decide(f.ctx, f.advisor.ID, in.ID, workflow.DecisionReject, "missing insurance")
	require.NoError(t, err)
	_, err = f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentAttachment, uploadHeader(t, "late.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestReviewReport(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, f.advisor)

	attachment, err := f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, "", uploadHeader(t, "offer.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, models.DocumentAttachment, attachment.Kind)
	assert.Nil(t, attachment.ReportStatus)

	report, err := f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentReport, uploadHeader(t, "report.pdf", []byte("%PDF")))
	require.NoError(t, err)
	require.NotNil(t, report.ReportStatus)
	assert.Equal(t, models.ReportPending, *report.ReportStatus)

	_, err = f.internships.AttachDocument(f.ctx, f.student.ID, in.ID, models.DocumentKind("MEMO"), uploadHeader(t, "memo.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	blank := "  "
	_, err = f.internships.ReviewReport(f.ctx, f.advisor.ID, in.ID, report.ID, &dto.ReviewReportRequest{Status: "REVISION", Feedback: &blank})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	tooHigh := 101
	_, err = f.internships.ReviewReport(f.ctx, f.advisor.ID, in.ID, report.ID, &dto.ReviewReportRequest{Status: "APPROVED", Grade: &tooHigh})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	for _, actor := range []int64{f.student.ID, f.otherAdvisor.ID, f.admin.ID} {
		_, err = f.internships.ReviewReport(f.ctx, actor, in.ID, report.ID, &dto.ReviewReportRequest{Status: "APPROVED"})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	}

	_, err = f.internships.ReviewReport(f.ctx, f.advisor.ID, in.ID, attachment.ID, &dto.ReviewReportRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	f.sent.take()
	feedback, grade := "add the weekly summaries", 85
	reviewed, err := f.internships.ReviewReport(f.ctx, f.advisor.ID, in.ID, report.ID, &dto.ReviewReportRequest{
		Status:   "REVISION",
		Feedback: &feedback,
		Grade:    &grade,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportRevision, *reviewed.ReportStatus)
	assert.Equal(t, feedback, *reviewed.Feedback)
	assert.Equal(t, 85, *reviewed.Grade)
	assert.Equal(t, f.advisor.ID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	// report reviews live beside the workflow, not in it
	assert.Equal(t, models.StatusPending, f.status(t, in.ID))
	assert.Empty(t, f.ledger(t, in.ID))

	events := f.sent.take()
	assert.Equal(t, []int64{f.student.ID}, recipients(events))
	assert.Equal(t, notify.KindReportReviewed, events[0].Kind)
	assert.Equal(t, models.ReportRevision, events[0].ReportStatus)

	docs, err := f.internships.ListDocuments(f.ctx, f.student.ID, in.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, models.ReportRevision, *docs[1].ReportStatus)

	_, err = f.internships.ReviewReport(f.ctx, f.dept.ID, in.ID, report.ID, &dto.ReviewReportRequest{Status: "COMPLETED"})
	require.NoError(t, err)
}

func TestMyDecisionsAndInbox(t *testing.T) {
	f := newFixture(t)
	in := f.internship(t, f.student, f.advisor)
	_, err := f.workflow.Decide(f.ctx, f.advisor.ID, in.ID, workflow.DecisionApprove, "")
	require.NoError(t, err)

	mine, err := f.approvals.ListMyDecisions(f.ctx, f.advisor.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, in.ID, mine[0].InternshipID)

	none, err := f.approvals.ListMyDecisions(f.ctx, f.dept.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.approvals.ListApprovals(f.ctx, f.otherStudent.ID, in.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// deliver what the workflow queued through the inbox sink
	inbox := notify.NewInboxSink(f.store)
	for _, e := range f.sent.take() {
		require.NoError(t, inbox.Deliver(f.ctx, e))
	}

	items, err := f.notifications.ListNotifications(f.ctx, f.student.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StatusAdvisorApproved, items[0].Status)

	require.NoError(t, f.notifications.MarkRead(f.ctx, f.student.ID, items[0].ID))
	items, err = f.notifications.ListNotifications(f.ctx, f.student.ID, true, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = f.notifications.MarkRead(f.ctx, f.otherStudent.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
