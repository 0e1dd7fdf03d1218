package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/internflow/internal/db"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/dberrors"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository runs
// unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// Begin opens a transaction on a pool or a savepoint inside a transaction
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	psql    = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	nowExpr = squirrel.Expr("NOW()")
)

var (
	_ Tx    = (*Repositories)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Repositories holds all the repository instances bound to one connection or transaction
type Repositories struct {
	*InternshipRepository
	*ApprovalRepository
	*UserRepository
	*DocumentRepository
	*NotificationRepository
}

// NewRepositories initializes all repositories over q
func NewRepositories(q DBTX) *Repositories {
	return &Repositories{
		InternshipRepository:   NewInternshipRepository(q),
		ApprovalRepository:     NewApprovalRepository(q),
		UserRepository:         NewUserRepository(q),
		DocumentRepository:     NewDocumentRepository(q),
		NotificationRepository: NewNotificationRepository(q),
	}
}

// PostgresStore is the Store backed by PostgreSQL
type PostgresStore struct {
	*Repositories
	db          *db.PostgresDB
	txTimeout   time.Duration
	lockTimeout time.Duration
}

// NewPostgresStore creates a Store over the pool. txTimeout bounds every transaction;
// lockTimeout bounds each row-lock wait inside it.
func NewPostgresStore(database *db.PostgresDB, txTimeout, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{
		Repositories: NewRepositories(database.Pool),
		db:           database,
		txTimeout:    txTimeout,
		lockTimeout:  lockTimeout,
	}
}

// WithinTransaction runs fn in a single transaction with bounded lock waits.
// Transient failures surface as retryable persistence errors.
func (s *PostgresStore) WithinTransaction(ctx context.Context, fn TxFn) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		// SET LOCAL does not take bind parameters
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return storageError("failed to set lock timeout", err)
		}
		return fn(ctx, NewRepositories(tx))
	})
	if err == nil {
		return nil
	}

	var ce *apperrors.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return storageError("transaction failed", err)
}

// storageError classifies a database error. Transient failures become retryable
// persistence errors; anything else is wrapped as is.
func storageError(msg string, err error) error {
	if dberrors.IsTransient(err) {
		return apperrors.NewPersistenceError(msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
