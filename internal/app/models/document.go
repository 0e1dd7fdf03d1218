package models

import "time"

// DocumentKind separates plain attachments from internship reports, which are reviewed
type DocumentKind string

const (
	DocumentAttachment DocumentKind = "ATTACHMENT"
	DocumentReport     DocumentKind = "REPORT"
)

// Valid reports whether k is a known kind
func (k DocumentKind) Valid() bool {
	return k == DocumentAttachment || k == DocumentReport
}

// ReportStatus is the review state of a report. It is independent of the internship status.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportApproved  ReportStatus = "APPROVED"
	ReportRejected  ReportStatus = "REJECTED"
	ReportRevision  ReportStatus = "REVISION"
	ReportCompleted ReportStatus = "COMPLETED"
)

// Reviewed reports whether s is a status a reviewer may set
func (s ReportStatus) Reviewed() bool {
	switch s {
	case ReportApproved, ReportRejected, ReportRevision, ReportCompleted:
		return true
	}
	return false
}

// NeedsFeedback reports whether a review with status s must explain itself
func (s ReportStatus) NeedsFeedback() bool {
	return s == ReportRejected || s == ReportRevision
}

// Document is a file attached to an internship ('documents' table).
// The bytes live in the blob store under StoragePath.
type Document struct {
	ID           int64        `json:"id" db:"id"`
	InternshipID int64        `json:"internshipId" db:"internship_id"`
	UploadedBy   int64        `json:"uploadedBy" db:"uploaded_by"`
	Kind         DocumentKind `json:"kind" db:"kind"`
	FileName     string       `json:"fileName" db:"file_name"`
	ContentType  string       `json:"contentType" db:"content_type"`
	FileSize     int64        `json:"fileSize" db:"file_size"`
	StoragePath  string       `json:"-" db:"storage_path"`
	UploadedAt   time.Time    `json:"uploadedAt" db:"uploaded_at"`

	// Review fields are only set on reports
	ReportStatus *ReportStatus `json:"reportStatus,omitempty" db:"report_status"`
	Feedback     *string       `json:"feedback,omitempty" db:"feedback"`
	Grade        *int          `json:"grade,omitempty" db:"grade"`
	ReviewedBy   *int64        `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time    `json:"reviewedAt,omitempty" db:"reviewed_at"`
}
