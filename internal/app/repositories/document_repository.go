package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/dberrors"
)

var documentColumns = []string{
	"id", "internship_id", "uploaded_by", "kind", "file_name", "content_type", "file_size", "storage_path", "uploaded_at",
	"report_status", "feedback", "grade", "reviewed_by", "reviewed_at",
}

// DocumentRepository handles document metadata
type DocumentRepository struct {
	db DBTX
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	if err := row.Scan(
		&d.ID, &d.InternshipID, &d.UploadedBy, &d.Kind, &d.FileName, &d.ContentType, &d.FileSize, &d.StoragePath, &d.UploadedAt,
		&d.ReportStatus, &d.Feedback, &d.Grade, &d.ReviewedBy, &d.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// AddDocument inserts document metadata
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *models.Document) (int64, error) {
	sql, args, err := psql.Insert("documents").
		Columns("internship_id", "uploaded_by", "kind", "file_name", "content_type", "file_size", "storage_path", "report_status").
		Values(doc.InternshipID, doc.UploadedBy, doc.Kind, doc.FileName, doc.ContentType, doc.FileSize, doc.StoragePath, doc.ReportStatus).
		Suffix("RETURNING id, uploaded_at").
		ToSql()
	if err != nil {
		return 0, err
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID, &doc.UploadedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrInternshipNotFound
		}
		return 0, storageError("failed to add document", err)
	}
	return doc.ID, nil
}

// GetDocument retrieves one document of an internship
func (r *DocumentRepository) GetDocument(ctx context.Context, internshipID, documentID int64) (*models.Document, error) {
	sql, args, err := psql.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"id": documentID, "internship_id": internshipID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, storageError("failed to get document", err)
	}
	return doc, nil
}

// ListDocuments returns the documents of an internship in upload order
func (r *DocumentRepository) ListDocuments(ctx context.Context, internshipID int64) ([]*models.Document, error) {
	sql, args, err := psql.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"internship_id": internshipID}).
		OrderBy("uploaded_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storageError("failed to list documents", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, storageError("failed to scan document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to list documents", err)
	}
	return docs, nil
}

// UpdateReportReview stores the review fields of a report
func (r *DocumentRepository) UpdateReportReview(ctx context.Context, doc *models.Document) error {
	sql, args, err := psql.Update("documents").
		Set("report_status", doc.ReportStatus).
		Set("feedback", doc.Feedback).
		Set("grade", doc.Grade).
		Set("reviewed_by", doc.ReviewedBy).
		Set("reviewed_at", nowExpr).
		Where(squirrel.Eq{"id": doc.ID, "internship_id": doc.InternshipID, "kind": models.DocumentReport}).
		Suffix("RETURNING reviewed_at").
		ToSql()
	if err != nil {
		return err
	}

	var reviewedAt time.Time
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&reviewedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrDocumentNotFound
		}
		return storageError("failed to update report review", err)
	}
	doc.ReviewedAt = &reviewedAt
	return nil
}
