package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
)

var internshipColumns = []string{
	"id", "student_id", "advisor_id", "status",
	"company_name", "company_address", "company_phone",
	"start_date", "end_date", "work_days", "description", "type",
	"is_paid", "has_insurance_support", "has_parental_insurance",
	"iban", "bank_name", "bank_branch",
	"created_at", "updated_at",
}

// InternshipRepository handles database operations for internships
type InternshipRepository struct {
	db DBTX
}

// NewInternshipRepository creates a new InternshipRepository
func NewInternshipRepository(db DBTX) *InternshipRepository {
	return &InternshipRepository{db: db}
}

func scanInternship(row pgx.Row) (*models.Internship, error) {
	var in models.Internship
	err := row.Scan(
		&in.ID,
		&in.StudentID,
		&in.AdvisorID,
		&in.Status,
		&in.CompanyName,
		&in.CompanyAddress,
		&in.CompanyPhone,
		&in.StartDate,
		&in.EndDate,
		&in.WorkDays,
		&in.Description,
		&in.Type,
		&in.IsPaid,
		&in.HasInsuranceSupport,
		&in.HasParentalInsurance,
		&in.IBAN,
		&in.BankName,
		&in.BankBranch,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// CreateInternship inserts a new internship and returns its ID
func (r *InternshipRepository) CreateInternship(ctx context.Context, in *models.Internship) (int64, error) {
	sql, args, err := psql.Insert("internships").
		Columns(
			"student_id", "advisor_id", "status",
			"company_name", "company_address", "company_phone",
			"start_date", "end_date", "work_days", "description", "type",
			"is_paid", "has_insurance_support", "has_parental_insurance",
			"iban", "bank_name", "bank_branch",
		).
		Values(
			in.StudentID, in.AdvisorID, in.Status,
			in.CompanyName, in.CompanyAddress, in.CompanyPhone,
			in.StartDate, in.EndDate, in.WorkDays, in.Description, in.Type,
			in.IsPaid, in.HasInsuranceSupport, in.HasParentalInsurance,
			in.IBAN, in.BankName, in.BankBranch,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return 0, err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&in.ID, &in.CreatedAt, &in.UpdatedAt); err != nil {
		return 0, storageError("failed to create internship", err)
	}
	return in.ID, nil
}

// GetInternship retrieves an internship by ID
func (r *InternshipRepository) GetInternship(ctx context.Context, id int64) (*models.Internship, error) {
	return r.get(ctx, id, false)
}

// LockInternship retrieves an internship with SELECT ... FOR UPDATE.
// Concurrent transitions on the same internship queue behind this lock.
func (r *InternshipRepository) LockInternship(ctx context.Context, id int64) (*models.Internship, error) {
	return r.get(ctx, id, true)
}

func (r *InternshipRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Internship, error) {
	query := psql.Select(internshipColumns...).
		From("internships").
		Where("id = ?", id)
	if forUpdate {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	in, err := scanInternship(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInternshipNotFound
		}
		return nil, storageError("failed to get internship", err)
	}
	return in, nil
}

// ListInternships returns internships matching filter, newest first
func (r *InternshipRepository) ListInternships(ctx context.Context, filter models.InternshipFilter) ([]*models.Internship, error) {
	query := psql.Select(internshipColumns...).
		From("internships").
		OrderBy("created_at DESC", "id DESC")

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.AdvisorID != nil {
		query = query.Where("advisor_id = ?", *filter.AdvisorID)
	}
	if filter.ParticipantID != nil {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"student_id": *filter.ParticipantID},
			squirrel.Eq{"advisor_id": *filter.ParticipantID},
		})
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to list internships", err)
	}
	defer rows.Close()

	var internships []*models.Internship
	for rows.Next() {
		in, err := scanInternship(rows)
		if err != nil {
			return nil, storageError("failed to scan internship", err)
		}
		internships = append(internships, in)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list internships", err)
	}
	return internships, nil
}

// UpdateInternshipStatus writes a new status
func (r *InternshipRepository) UpdateInternshipStatus(ctx context.Context, id int64, status models.InternshipStatus) error {
	return r.update(ctx, id, "status", status)
}

// UpdateInternshipAdvisor assigns a new advisor
func (r *InternshipRepository) UpdateInternshipAdvisor(ctx context.Context, id int64, advisorID int64) error {
	return r.update(ctx, id, "advisor_id", advisorID)
}

func (r *InternshipRepository) update(ctx context.Context, id int64, column string, value interface{}) error {
	sql, args, err := psql.Update("internships").
		Set(column, value).
		Set("updated_at", nowExpr).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return storageError("failed to update internship", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInternshipNotFound
	}
	return nil
}

// DeleteInternship deletes an internship. Ledger entries and documents go with it
// through ON DELETE CASCADE.
func (r *InternshipRepository) DeleteInternship(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("internships").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return storageError("failed to delete internship", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInternshipNotFound
	}
	return nil
}
