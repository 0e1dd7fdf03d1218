package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/dberrors"
)

var approvalColumns = []string{
	"id", "internship_id", "approver_id", "approver_role", "action",
	"from_status", "result_status", "comment", "action_at",
}

// ApprovalRepository handles the approval_records ledger.
// The table rejects UPDATE and direct DELETE through triggers, so this type only inserts and reads.
type ApprovalRepository struct {
	db DBTX
}

// NewApprovalRepository creates a new ApprovalRepository
func NewApprovalRepository(db DBTX) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func scanApproval(row pgx.Row) (*models.ApprovalRecord, error) {
	var rec models.ApprovalRecord
	err := row.Scan(
		&rec.ID,
		&rec.InternshipID,
		&rec.ApproverID,
		&rec.ApproverRole,
		&rec.Action,
		&rec.FromStatus,
		&rec.ResultStatus,
		&rec.Comment,
		&rec.ActionAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AppendApproval inserts a ledger entry and returns its ID
func (r *ApprovalRepository) AppendApproval(ctx context.Context, rec *models.ApprovalRecord) (int64, error) {
	sql, args, err := psql.Insert("approval_records").
		Columns("internship_id", "approver_id", "approver_role", "action", "from_status", "result_status", "comment", "action_at").
		Values(rec.InternshipID, rec.ApproverID, rec.ApproverRole, rec.Action, rec.FromStatus, rec.ResultStatus, rec.Comment, rec.ActionAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rec.ID); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrInternshipNotFound
		}
		return 0, storageError("failed to append approval record", err)
	}
	return rec.ID, nil
}

// ListApprovalsByInternship returns the ledger of one internship, newest first
func (r *ApprovalRepository) ListApprovalsByInternship(ctx context.Context, internshipID int64) ([]*models.ApprovalRecord, error) {
	return r.list(ctx, squirrel.Eq{"internship_id": internshipID})
}

// ListApprovalsByApprover returns every entry written by approverID, newest first
func (r *ApprovalRepository) ListApprovalsByApprover(ctx context.Context, approverID int64) ([]*models.ApprovalRecord, error) {
	return r.list(ctx, squirrel.Eq{"approver_id": approverID})
}

// LatestApproval returns the most recent ledger entry of an internship
func (r *ApprovalRepository) LatestApproval(ctx context.Context, internshipID int64) (*models.ApprovalRecord, error) {
	sql, args, err := psql.Select(approvalColumns...).
		From("approval_records").
		Where(squirrel.Eq{"internship_id": internshipID}).
		OrderBy("action_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	rec, err := scanApproval(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApprovalNotFound
		}
		return nil, storageError("failed to get latest approval", err)
	}
	return rec, nil
}

func (r *ApprovalRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*models.ApprovalRecord, error) {
	sql, args, err := psql.Select(approvalColumns...).
		From("approval_records").
		Where(where).
		OrderBy("action_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to list approval records", err)
	}
	defer rows.Close()

	records := make([]*models.ApprovalRecord, 0)
	for rows.Next() {
		rec, err := scanApproval(rows)
		if err != nil {
			return nil, storageError("failed to scan approval record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list approval records", err)
	}
	return records, nil
}
