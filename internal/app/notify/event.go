package notify

import (
	"fmt"

	"github.com/yigit/internflow/internal/app/models"
)

// EventKind tells recipients what happened to the internship
type EventKind string

const (
	KindStatusChanged   EventKind = "STATUS_CHANGED"
	KindResubmitted     EventKind = "RESUBMITTED"
	KindAdvisorAssigned EventKind = "ADVISOR_ASSIGNED"
	KindDeleted         EventKind = "DELETED"
	KindReportReviewed  EventKind = "REPORT_REVIEWED"
)

// Event is one notice addressed to a single recipient
type Event struct {
	Kind         EventKind               `json:"kind"`
	RecipientID  int64                   `json:"recipientId"`
	InternshipID int64                   `json:"internshipId"`
	Status       models.InternshipStatus `json:"status"`
	Comment      *string                 `json:"comment,omitempty"`
	ReportStatus models.ReportStatus     `json:"reportStatus,omitempty"`
}

// Subject is the short title used for inbox rows and email subjects
func (e Event) Subject() string {
	switch e.Kind {
	case KindResubmitted:
		return fmt.Sprintf("Internship #%d resubmitted", e.InternshipID)
	case KindAdvisorAssigned:
		return fmt.Sprintf("Advisor assigned to internship #%d", e.InternshipID)
	case KindDeleted:
		return fmt.Sprintf("Internship #%d deleted", e.InternshipID)
	case KindReportReviewed:
		return fmt.Sprintf("Report for internship #%d reviewed", e.InternshipID)
	default:
		return fmt.Sprintf("Internship #%d is now %s", e.InternshipID, e.Status)
	}
}

// Message is the body text of the notice
func (e Event) Message() string {
	var text string
	switch e.Kind {
	case KindResubmitted:
		text = fmt.Sprintf("The student resubmitted internship #%d and it is waiting for review again.", e.InternshipID)
	case KindAdvisorAssigned:
		text = fmt.Sprintf("An advisor has been assigned to internship #%d.", e.InternshipID)
	case KindDeleted:
		text = fmt.Sprintf("Internship #%d was deleted and no longer needs your review.", e.InternshipID)
	case KindReportReviewed:
		text = fmt.Sprintf("Your report for internship #%d was marked %s.", e.InternshipID, e.ReportStatus)
	default:
		text = fmt.Sprintf("The status of internship #%d changed to %s.", e.InternshipID, e.Status)
	}
	if e.Comment != nil && *e.Comment != "" {
		text += " Comment: " + *e.Comment
	}
	return text
}
