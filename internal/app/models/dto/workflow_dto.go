package dto

import "github.com/yigit/internflow/internal/app/models"

// TransitionRequest asks for a raw status change
type TransitionRequest struct {
	Status  string `json:"status" validate:"required" example:"ADVISOR_APPROVED"`
	Comment string `json:"comment" validate:"max=2000" example:"Looks good"`
}

// DecisionRequest carries the optional reviewer comment of a decision
type DecisionRequest struct {
	Comment string `json:"comment" validate:"max=2000" example:"Please fix the dates"`
}

// TransitionResponse reports a committed transition
type TransitionResponse struct {
	InternshipID  int64                   `json:"internshipId" example:"7"`
	Status        models.InternshipStatus `json:"status" example:"ADVISOR_APPROVED"`
	LedgerEntryID int64                   `json:"ledgerEntryId" example:"31"`
}

// ApprovalListResponse lists ledger entries newest first
type ApprovalListResponse struct {
	Approvals []*models.ApprovalRecord `json:"approvals"`
}

// NotificationListResponse is a page of the caller's inbox
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
}

// ListNotificationsRequest holds the inbox query parameters
type ListNotificationsRequest struct {
	UnreadOnly bool   `form:"unread"`
	Limit      uint64 `form:"limit"`
}
