package repositories

import (
	"context"

	"github.com/yigit/internflow/internal/app/models"
)

// InternshipStore persists internships.
type InternshipStore interface {
	CreateInternship(ctx context.Context, in *models.Internship) (int64, error)
	GetInternship(ctx context.Context, id int64) (*models.Internship, error)
	// LockInternship reads the internship and holds its row lock until the transaction ends.
	LockInternship(ctx context.Context, id int64) (*models.Internship, error)
	ListInternships(ctx context.Context, filter models.InternshipFilter) ([]*models.Internship, error)
	UpdateInternshipStatus(ctx context.Context, id int64, status models.InternshipStatus) error
	UpdateInternshipAdvisor(ctx context.Context, id int64, advisorID int64) error
	// DeleteInternship removes the internship together with its ledger and documents.
	DeleteInternship(ctx context.Context, id int64) error
}

// ApprovalLedger is the append-only approval history. Entries are never updated or deleted.
type ApprovalLedger interface {
	AppendApproval(ctx context.Context, record *models.ApprovalRecord) (int64, error)
	// ListApprovalsByInternship returns entries newest first.
	ListApprovalsByInternship(ctx context.Context, internshipID int64) ([]*models.ApprovalRecord, error)
	// LatestApproval returns apperrors.ErrApprovalNotFound for an empty ledger.
	LatestApproval(ctx context.Context, internshipID int64) (*models.ApprovalRecord, error)
	ListApprovalsByApprover(ctx context.Context, approverID int64) ([]*models.ApprovalRecord, error)
}

// UserStore reads users together with their current roles.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

// DocumentStore keeps document metadata; the bytes live in the blob store.
type DocumentStore interface {
	AddDocument(ctx context.Context, doc *models.Document) (int64, error)
	GetDocument(ctx context.Context, internshipID, documentID int64) (*models.Document, error)
	ListDocuments(ctx context.Context, internshipID int64) ([]*models.Document, error)
	UpdateReportReview(ctx context.Context, doc *models.Document) error
}

// NotificationStore backs the notification inbox.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit uint64) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID, notificationID int64) error
}

// Tx is the full set of data operations, usable inside or outside a transaction.
type Tx interface {
	InternshipStore
	ApprovalLedger
	UserStore
	DocumentStore
	NotificationStore
}

// TxFn runs inside a transaction. Returning an error rolls everything back.
type TxFn func(ctx context.Context, tx Tx) error

// Store is the single authoritative store.
type Store interface {
	Tx
	WithinTransaction(ctx context.Context, fn TxFn) error
}
