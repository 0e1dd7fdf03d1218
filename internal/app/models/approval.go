package models

import "time"

// ApprovalAction names what a ledger entry records
type ApprovalAction string

const (
	ActionStartReview     ApprovalAction = "START_REVIEW"
	ActionApprove         ApprovalAction = "APPROVE"
	ActionReject          ApprovalAction = "REJECT"
	ActionRequestRevision ApprovalAction = "REQUEST_REVISION"
	ActionResubmit        ApprovalAction = "RESUBMIT"
	ActionComplete        ApprovalAction = "COMPLETE"
	ActionAssignAdvisor   ApprovalAction = "ASSIGN_ADVISOR"
)

// ApprovalRecord is one immutable entry of the approval ledger ('approval_records' table).
// ApproverRole is the role the approver acted under at the time, never re-derived.
type ApprovalRecord struct {
	ID           int64            `json:"id" db:"id"`
	InternshipID int64            `json:"internshipId" db:"internship_id"`
	ApproverID   int64            `json:"approverId" db:"approver_id"`
	ApproverRole Role             `json:"approverRole" db:"approver_role"`
	Action       ApprovalAction   `json:"action" db:"action"`
	FromStatus   InternshipStatus `json:"fromStatus" db:"from_status"`
	ResultStatus InternshipStatus `json:"resultStatus" db:"result_status"`
	Comment      *string          `json:"comment,omitempty" db:"comment"`
	ActionAt     time.Time        `json:"actionAt" db:"action_at"`
}
