package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

// state is one consistent version of the data. A transaction works on a clone
// and the clone replaces the live state on commit.
type state struct {
	now func() time.Time

	internshipSeq   int64
	approvalSeq     int64
	userSeq         int64
	documentSeq     int64
	notificationSeq int64

	internships   map[int64]*models.Internship
	approvals     []*models.ApprovalRecord
	users         map[int64]*models.User
	documents     map[int64]*models.Document
	notifications map[int64]*models.Notification
}

func newState(now func() time.Time) *state {
	return &state{
		now:           now,
		internships:   make(map[int64]*models.Internship),
		users:         make(map[int64]*models.User),
		documents:     make(map[int64]*models.Document),
		notifications: make(map[int64]*models.Notification),
	}
}

func (s *state) clone() *state {
	c := *s
	c.internships = make(map[int64]*models.Internship, len(s.internships))
	for id, in := range s.internships {
		c.internships[id] = in
	}
	c.approvals = append([]*models.ApprovalRecord(nil), s.approvals...)
	c.users = make(map[int64]*models.User, len(s.users))
	for id, u := range s.users {
		c.users[id] = u
	}
	c.documents = make(map[int64]*models.Document, len(s.documents))
	for id, d := range s.documents {
		c.documents[id] = d
	}
	c.notifications = make(map[int64]*models.Notification, len(s.notifications))
	for id, n := range s.notifications {
		c.notifications[id] = n
	}
	return &c
}

// Stored values are never mutated in place: writers store a fresh copy, readers get a copy.

func copyInternship(in *models.Internship) *models.Internship {
	c := *in
	return &c
}

func copyApproval(rec *models.ApprovalRecord) *models.ApprovalRecord {
	c := *rec
	return &c
}

func copyDocument(d *models.Document) *models.Document {
	c := *d
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Roles = append([]models.Role(nil), u.Roles...)
	return &c
}

func (s *state) CreateInternship(_ context.Context, in *models.Internship) (int64, error) {
	if _, ok := s.users[in.StudentID]; !ok {
		return 0, apperrors.ErrUserNotFound
	}
	s.internshipSeq++
	now := s.now()
	in.ID = s.internshipSeq
	in.CreatedAt = now
	in.UpdatedAt = now
	s.internships[in.ID] = copyInternship(in)
	return in.ID, nil
}

func (s *state) GetInternship(_ context.Context, id int64) (*models.Internship, error) {
	in, ok := s.internships[id]
	if !ok {
		return nil, apperrors.ErrInternshipNotFound
	}
	return copyInternship(in), nil
}

// LockInternship is a plain read; the store-wide transaction lock already serializes writers.
func (s *state) LockInternship(ctx context.Context, id int64) (*models.Internship, error) {
	return s.GetInternship(ctx, id)
}

func (s *state) ListInternships(_ context.Context, f models.InternshipFilter) ([]*models.Internship, error) {
	out := make([]*models.Internship, 0)
	for _, in := range s.internships {
		if f.StudentID != nil && in.StudentID != *f.StudentID {
			continue
		}
		if f.AdvisorID != nil && !in.IsAdvisedBy(*f.AdvisorID) {
			continue
		}
		if f.ParticipantID != nil && in.StudentID != *f.ParticipantID && !in.IsAdvisedBy(*f.ParticipantID) {
			continue
		}
		if f.Status != nil && in.Status != *f.Status {
			continue
		}
		out = append(out, copyInternship(in))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && uint64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *state) UpdateInternshipStatus(_ context.Context, id int64, status models.InternshipStatus) error {
	in, ok := s.internships[id]
	if !ok {
		return apperrors.ErrInternshipNotFound
	}
	c := copyInternship(in)
	c.Status = status
	c.UpdatedAt = s.now()
	s.internships[id] = c
	return nil
}

func (s *state) UpdateInternshipAdvisor(_ context.Context, id int64, advisorID int64) error {
	in, ok := s.internships[id]
	if !ok {
		return apperrors.ErrInternshipNotFound
	}
	if _, ok := s.users[advisorID]; !ok {
		return apperrors.ErrUserNotFound
	}
	c := copyInternship(in)
	c.AdvisorID = &advisorID
	c.UpdatedAt = s.now()
	s.internships[id] = c
	return nil
}

// DeleteInternship cascades to ledger entries and documents, like the foreign keys do in Postgres.
func (s *state) DeleteInternship(_ context.Context, id int64) error {
	if _, ok := s.internships[id]; !ok {
		return apperrors.ErrInternshipNotFound
	}
	delete(s.internships, id)

	kept := s.approvals[:0:0]
	for _, rec := range s.approvals {
		if rec.InternshipID != id {
			kept = append(kept, rec)
		}
	}
	s.approvals = kept

	for docID, d := range s.documents {
		if d.InternshipID == id {
			delete(s.documents, docID)
		}
	}
	return nil
}

func (s *state) AppendApproval(_ context.Context, rec *models.ApprovalRecord) (int64, error) {
	if _, ok := s.internships[rec.InternshipID]; !ok {
		return 0, apperrors.ErrInternshipNotFound
	}
	s.approvalSeq++
	rec.ID = s.approvalSeq
	if rec.ActionAt.IsZero() {
		rec.ActionAt = s.now()
	}
	s.approvals = append(s.approvals, copyApproval(rec))
	return rec.ID, nil
}

// newestFirst walks the ledger backwards: entries are appended in commit order.
func (s *state) newestFirst(match func(*models.ApprovalRecord) bool) []*models.ApprovalRecord {
	out := make([]*models.ApprovalRecord, 0)
	for i := len(s.approvals) - 1; i >= 0; i-- {
		if match(s.approvals[i]) {
			out = append(out, copyApproval(s.approvals[i]))
		}
	}
	return out
}

func (s *state) ListApprovalsByInternship(_ context.Context, internshipID int64) ([]*models.ApprovalRecord, error) {
	return s.newestFirst(func(r *models.ApprovalRecord) bool { return r.InternshipID == internshipID }), nil
}

func (s *state) LatestApproval(_ context.Context, internshipID int64) (*models.ApprovalRecord, error) {
	for i := len(s.approvals) - 1; i >= 0; i-- {
		if s.approvals[i].InternshipID == internshipID {
			return copyApproval(s.approvals[i]), nil
		}
	}
	return nil, apperrors.ErrApprovalNotFound
}

func (s *state) ListApprovalsByApprover(_ context.Context, approverID int64) ([]*models.ApprovalRecord, error) {
	return s.newestFirst(func(r *models.ApprovalRecord) bool { return r.ApproverID == approverID }), nil
}

func (s *state) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *state) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *state) CreateUser(_ context.Context, user *models.User) (int64, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, apperrors.NewConflictError("email already registered")
		}
	}
	s.userSeq++
	user.ID = s.userSeq
	user.CreatedAt = s.now()
	s.users[user.ID] = copyUser(user)
	return user.ID, nil
}

func (s *state) ListUsersByRole(_ context.Context, role models.Role) ([]*models.User, error) {
	out := make([]*models.User, 0)
	for _, u := range s.users {
		if u.IsActive && u.HasRole(role) {
			out = append(out, copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *state) AddDocument(_ context.Context, doc *models.Document) (int64, error) {
	if _, ok := s.internships[doc.InternshipID]; !ok {
		return 0, apperrors.ErrInternshipNotFound
	}
	s.documentSeq++
	doc.ID = s.documentSeq
	doc.UploadedAt = s.now()
	s.documents[doc.ID] = copyDocument(doc)
	return doc.ID, nil
}

func (s *state) UpdateReportReview(_ context.Context, doc *models.Document) error {
	d, ok := s.documents[doc.ID]
	if !ok || d.InternshipID != doc.InternshipID || d.Kind != models.DocumentReport {
		return apperrors.ErrDocumentNotFound
	}
	now := s.now()
	doc.ReviewedAt = &now
	c := copyDocument(d)
	c.ReportStatus = doc.ReportStatus
	c.Feedback = doc.Feedback
	c.Grade = doc.Grade
	c.ReviewedBy = doc.ReviewedBy
	c.ReviewedAt = &now
	s.documents[doc.ID] = c
	return nil
}

func (s *state) GetDocument(_ context.Context, internshipID, documentID int64) (*models.Document, error) {
	d, ok := s.documents[documentID]
	if !ok || d.InternshipID != internshipID {
		return nil, apperrors.ErrDocumentNotFound
	}
	return copyDocument(d), nil
}

func (s *state) ListDocuments(_ context.Context, internshipID int64) ([]*models.Document, error) {
	out := make([]*models.Document, 0)
	for _, d := range s.documents {
		if d.InternshipID == internshipID {
			out = append(out, copyDocument(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *state) CreateNotification(_ context.Context, n *models.Notification) (int64, error) {
	s.notificationSeq++
	n.ID = s.notificationSeq
	n.CreatedAt = s.now()
	c := *n
	s.notifications[n.ID] = &c
	return n.ID, nil
}

func (s *state) ListNotifications(_ context.Context, recipientID int64, unreadOnly bool, limit uint64) ([]*models.Notification, error) {
	out := make([]*models.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID != recipientID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *state) MarkNotificationRead(_ context.Context, recipientID, notificationID int64) error {
	n, ok := s.notifications[notificationID]
	if !ok || n.RecipientID != recipientID {
		return apperrors.NewResourceNotFoundError("notification not found")
	}
	c := *n
	c.IsRead = true
	s.notifications[notificationID] = &c
	return nil
}
