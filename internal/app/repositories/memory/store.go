// Package memory is an in-process Store for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

var (
	_ repositories.Store = (*Store)(nil)
	_ repositories.Tx    = (*state)(nil)
)

// Store keeps all data in memory. Transactions are serialized by a store-wide
// lock, run against a private clone, and swap the clone in on success.
type Store struct {
	txLock    chan struct{}
	txTimeout time.Duration

	mu sync.RWMutex
	st *state
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.st.now = now }
}

// WithTransactionTimeout bounds both the wait for the transaction lock and the transaction itself
func WithTransactionTimeout(d time.Duration) Option {
	return func(s *Store) { s.txTimeout = d }
}

// NewStore creates an empty Store
func NewStore(opts ...Option) *Store {
	s := &Store{
		txLock:    make(chan struct{}, 1),
		txTimeout: 5 * time.Second,
		st:        newState(func() time.Time { return time.Now().UTC() }),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithinTransaction runs fn with exclusive access to a copy of the data.
// A lock wait that outlives the context is reported as a retryable persistence failure.
func (s *Store) WithinTransaction(ctx context.Context, fn repositories.TxFn) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	select {
	case s.txLock <- struct{}{}:
	case <-ctx.Done():
		return apperrors.NewPersistenceError("timed out waiting for transaction lock", ctx.Err())
	}
	defer func() { <-s.txLock }()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apperrors.NewPersistenceError("transaction timed out", err)
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return s.WithinTransaction(ctx, func(_ context.Context, tx repositories.Tx) error {
		return fn(tx)
	})
}

func (s *Store) CreateInternship(ctx context.Context, in *models.Internship) (id int64, err error) {
	err = s.write(ctx, func(tx repositories.Tx) error {
		id, err = tx.CreateInternship(ctx, in)
		return err
	})
	return id, err
}

func (s *Store) GetInternship(ctx context.Context, id int64) (in *models.Internship, err error) {
	err = s.read(func(st *state) error {
		in, err = st.GetInternship(ctx, id)
		return err
	})
	return in, err
}

func (s *Store) LockInternship(ctx context.Context, id int64) (*models.Internship, error) {
	return s.GetInternship(ctx, id)
}

func (s *Store) ListInternships(ctx context.Context, f models.InternshipFilter) (out []*models.Internship, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListInternships(ctx, f)
		return err
	})
	return out, err
}

func (s *Store) UpdateInternshipStatus(ctx context.Context, id int64, status models.InternshipStatus) error {
	return s.write(ctx, func(tx repositories.Tx) error {
		return tx.UpdateInternshipStatus(ctx, id, status)
	})
}

func (s *Store) UpdateInternshipAdvisor(ctx context.Context, id int64, advisorID int64) error {
	return s.write(ctx, func(tx repositories.Tx) error {
		return tx.UpdateInternshipAdvisor(ctx, id, advisorID)
	})
}

func (s *Store) DeleteInternship(ctx context.Context, id int64) error {
	return s.write(ctx, func(tx repositories.Tx) error {
		return tx.DeleteInternship(ctx, id)
	})
}

func (s *Store) AppendApproval(ctx context.Context, rec *models.ApprovalRecord) (id int64, err error) {
	err = s.write(ctx, func(tx repositories.Tx) error {
		id, err = tx.AppendApproval(ctx, rec)
		return err
	})
	return id, err
}

func (s *Store) ListApprovalsByInternship(ctx context.Context, internshipID int64) (out []*models.ApprovalRecord, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListApprovalsByInternship(ctx, internshipID)
		return err
	})
	return out, err
}

func (s *Store) LatestApproval(ctx context.Context, internshipID int64) (rec *models.ApprovalRecord, err error) {
	err = s.read(func(st *state) error {
		rec, err = st.LatestApproval(ctx, internshipID)
		return err
	})
	return rec, err
}

func (s *Store) ListApprovalsByApprover(ctx context.Context, approverID int64) (out []*models.ApprovalRecord, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListApprovalsByApprover(ctx, approverID)
		return err
	})
	return out, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (u *models.User, err error) {
	err = s.read(func(st *state) error {
		u, err = st.GetUser(ctx, id)
		return err
	})
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (u *models.User, err error) {
	err = s.read(func(st *state) error {
		u, err = st.GetUserByEmail(ctx, email)
		return err
	})
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (id int64, err error) {
	err = s.write(ctx, func(tx repositories.Tx) error {
		id, err = tx.CreateUser(ctx, user)
		return err
	})
	return id, err
}

func (s *Store) ListUsersByRole(ctx context.Context, role models.Role) (out []*models.User, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListUsersByRole(ctx, role)
		return err
	})
	return out, err
}

func (s *Store) AddDocument(ctx context.Context, doc *models.Document) (id int64, err error) {
	err = s.write(ctx, func(tx repositories.Tx) error {
		id, err = tx.AddDocument(ctx, doc)
		return err
	})
	return id, err
}

func (s *Store) GetDocument(ctx context.Context, internshipID, documentID int64) (d *models.Document, err error) {
	err = s.read(func(st *state) error {
		d, err = st.GetDocument(ctx, internshipID, documentID)
		return err
	})
	return d, err
}

func (s *Store) ListDocuments(ctx context.Context, internshipID int64) (out []*models.Document, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListDocuments(ctx, internshipID)
		return err
	})
	return out, err
}

func (s *Store) UpdateReportReview(ctx context.Context, doc *models.Document) error {
	return s.write(ctx, func(tx repositories.Tx) error {
		return tx.UpdateReportReview(ctx, doc)
	})
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (id int64, err error) {
	err = s.write(ctx, func(tx repositories.Tx) error {
		id, err = tx.CreateNotification(ctx, n)
		return err
	})
	return id, err
}

func (s *Store) ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, limit uint64) (out []*models.Notification, err error) {
	err = s.read(func(st *state) error {
		out, err = st.ListNotifications(ctx, recipientID, unreadOnly, limit)
		return err
	})
	return out, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, recipientID, notificationID int64) error {
	return s.write(ctx, func(tx repositories.Tx) error {
		return tx.MarkNotificationRead(ctx, recipientID, notificationID)
	})
}
