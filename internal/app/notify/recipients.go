package notify

import (
	"context"
	"fmt"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
)

// Planner decides who hears about a workflow outcome
type Planner struct {
	users  repositories.UserStore
	ledger repositories.ApprovalLedger
}

// NewPlanner creates a Planner reading from the given stores
func NewPlanner(users repositories.UserStore, ledger repositories.ApprovalLedger) *Planner {
	return &Planner{users: users, ledger: ledger}
}

// ForTransition returns the events for a committed ledger entry. in must be the
// internship after the transition.
func (p *Planner) ForTransition(ctx context.Context, in *models.Internship, rec *models.ApprovalRecord) ([]Event, error) {
	var recipients recipientSet

	if rec.Action == models.ActionResubmit {
		requester, err := p.revisionRequester(ctx, in.ID)
		if err != nil {
			return nil, err
		}
		recipients.add(requester)
		if in.AdvisorID != nil {
			recipients.add(*in.AdvisorID)
		}
		recipients.remove(rec.ApproverID)
		return recipients.events(Event{
			Kind:         KindResubmitted,
			InternshipID: in.ID,
			Status:       rec.ResultStatus,
			Comment:      rec.Comment,
		}), nil
	}

	recipients.add(in.StudentID)

	if rec.ResultStatus == models.StatusAdvisorApproved {
		for _, role := range []models.Role{models.RoleDepartmentCoordinator, models.RoleUniversityCoordinator} {
			coordinators, err := p.users.ListUsersByRole(ctx, role)
			if err != nil {
				return nil, fmt.Errorf("list %s users: %w", role, err)
			}
			for _, u := range coordinators {
				if u.IsActive {
					recipients.add(u.ID)
				}
			}
		}
	}

	recipients.remove(rec.ApproverID)
	return recipients.events(Event{
		Kind:         KindStatusChanged,
		InternshipID: in.ID,
		Status:       rec.ResultStatus,
		Comment:      rec.Comment,
	}), nil
}

// ForAssignment notifies the new advisor and the student
func (p *Planner) ForAssignment(in *models.Internship, actorID int64) []Event {
	var recipients recipientSet
	if in.AdvisorID != nil {
		recipients.add(*in.AdvisorID)
	}
	recipients.add(in.StudentID)
	recipients.remove(actorID)
	return recipients.events(Event{
		Kind:         KindAdvisorAssigned,
		InternshipID: in.ID,
		Status:       in.Status,
	})
}

// ForDeletion notifies the assigned advisor, if any
func (p *Planner) ForDeletion(in *models.Internship, actorID int64) []Event {
	var recipients recipientSet
	if in.AdvisorID != nil {
		recipients.add(*in.AdvisorID)
	}
	recipients.remove(actorID)
	return recipients.events(Event{
		Kind:         KindDeleted,
		InternshipID: in.ID,
		Status:       in.Status,
	})
}

// ForReportReview notifies the student whose report was reviewed
func (p *Planner) ForReportReview(in *models.Internship, doc *models.Document, actorID int64) []Event {
	var recipients recipientSet
	recipients.add(in.StudentID)
	recipients.add(doc.UploadedBy)
	recipients.remove(actorID)

	var status models.ReportStatus
	if doc.ReportStatus != nil {
		status = *doc.ReportStatus
	}
	return recipients.events(Event{
		Kind:         KindReportReviewed,
		InternshipID: in.ID,
		Status:       in.Status,
		Comment:      doc.Feedback,
		ReportStatus: status,
	})
}

// revisionRequester finds who asked for the revision being answered. Zero when
// the ledger has no such entry.
func (p *Planner) revisionRequester(ctx context.Context, internshipID int64) (int64, error) {
	records, err := p.ledger.ListApprovalsByInternship(ctx, internshipID)
	if err != nil {
		return 0, fmt.Errorf("list approvals: %w", err)
	}
	// newest first
	for _, r := range records {
		if r.Action == models.ActionRequestRevision {
			return r.ApproverID, nil
		}
	}
	return 0, nil
}

// recipientSet keeps insertion order and drops duplicates
type recipientSet struct {
	ids []int64
}

func (s *recipientSet) add(id int64) {
	if id == 0 {
		return
	}
	for _, existing := range s.ids {
		if existing == id {
			return
		}
	}
	s.ids = append(s.ids, id)
}

func (s *recipientSet) remove(id int64) {
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

func (s *recipientSet) events(template Event) []Event {
	events := make([]Event, 0, len(s.ids))
	for _, id := range s.ids {
		e := template
		e.RecipientID = id
		events = append(events, e)
	}
	return events
}
