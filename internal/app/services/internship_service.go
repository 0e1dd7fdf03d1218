package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/notify"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/filestorage"
	"github.com/yigit/internflow/internal/pkg/helpers"
	"github.com/yigit/internflow/internal/pkg/logger"
	"github.com/yigit/internflow/internal/pkg/validation"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	// MaxDocumentSize is the largest accepted attachment
	MaxDocumentSize = 10 << 20
)

// allowedDocumentTypes maps accepted extensions to the content type we store
var allowedDocumentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// InternshipService defines the interface for internship operations
type InternshipService interface {
	CreateInternship(ctx context.Context, actorID int64, req *dto.CreateInternshipRequest) (*models.Internship, error)
	GetInternship(ctx context.Context, actorID, internshipID int64) (*models.Internship, error)
	ListInternships(ctx context.Context, actorID int64, req *dto.ListInternshipsRequest) (*dto.InternshipListResponse, error)
	AssignAdvisor(ctx context.Context, actorID, internshipID, advisorID int64) (*dto.TransitionResponse, error)
	DeleteInternship(ctx context.Context, actorID, internshipID int64) error
	AttachDocument(ctx context.Context, actorID, internshipID int64, kind models.DocumentKind, file *multipart.FileHeader) (*models.Document, error)
	ReviewReport(ctx context.Context, actorID, internshipID, documentID int64, req *dto.ReviewReportRequest) (*models.Document, error)
	ListDocuments(ctx context.Context, actorID, internshipID int64) ([]*models.Document, error)
	OpenDocument(ctx context.Context, actorID, internshipID, documentID int64) (*models.Document, io.ReadCloser, error)
}

// internshipServiceImpl implements InternshipService
type internshipServiceImpl struct {
	store      repositories.Store
	authz      *auth.AuthorizationService
	files      filestorage.FileStorage
	planner    *notify.Planner
	dispatcher EventDispatcher
	now        func() time.Time
	logger     zerolog.Logger
}

// NewInternshipService creates a new InternshipService
func NewInternshipService(
	store repositories.Store,
	authz *auth.AuthorizationService,
	files filestorage.FileStorage,
	planner *notify.Planner,
	dispatcher EventDispatcher,
) InternshipService {
	return &internshipServiceImpl{
		store:      store,
		authz:      authz,
		files:      files,
		planner:    planner,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger.Component("internships"),
	}
}

// CreateInternship files a new application in the initial status. Students only.
func (s *internshipServiceImpl) CreateInternship(ctx context.Context, actorID int64, req *dto.CreateInternshipRequest) (*models.Internship, error) {
	p, err := s.authz.ResolvePrincipal(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(models.RoleStudent) {
		return nil, apperrors.NewForbiddenError("only students can apply for internships")
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	start, err := time.Parse(dto.DateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("startDate", "startDate must be a date formatted as "+dto.DateLayout)
	}
	end, err := time.Parse(dto.DateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("endDate", "endDate must be a date formatted as "+dto.DateLayout)
	}
	if !start.Before(end) {
		return nil, apperrors.NewValidationError("endDate", "endDate must be after startDate")
	}

	in := &models.Internship{
		StudentID:            p.UserID,
		Status:               models.InitialStatus,
		CompanyName:          strings.TrimSpace(req.CompanyName),
		CompanyAddress:       strings.TrimSpace(req.CompanyAddress),
		CompanyPhone:         strings.TrimSpace(req.CompanyPhone),
		StartDate:            start,
		EndDate:              end,
		WorkDays:             req.WorkDays,
		Description:          strings.TrimSpace(req.Description),
		Type:                 models.InternshipType(req.Type),
		IsPaid:               req.IsPaid,
		HasInsuranceSupport:  req.HasInsuranceSupport,
		HasParentalInsurance: req.HasParentalInsurance,
	}

	if req.IsPaid {
		if req.IBAN != nil {
			iban := validation.NormalizeIBAN(*req.IBAN)
			in.IBAN = &iban
		}
		in.BankName = req.BankName
		in.BankBranch = req.BankBranch
	} else if req.IBAN != nil || req.BankName != nil || req.BankBranch != nil {
		return nil, apperrors.NewValidationError("iban", "bank details are only accepted for paid internships")
	}

	if _, err := s.store.CreateInternship(ctx, in); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, in.ID).
		Msg("Internship created")
	return in, nil
}

// GetInternship returns an internship the actor may view
func (s *internshipServiceImpl) GetInternship(ctx context.Context, actorID, internshipID int64) (*models.Internship, error) {
	_, in, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionView, false)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// ListInternships returns the internships visible to the actor
func (s *internshipServiceImpl) ListInternships(ctx context.Context, actorID int64, req *dto.ListInternshipsRequest) (*dto.InternshipListResponse, error) {
	p, err := s.authz.ResolvePrincipal(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}

	filter, ok := auth.Scope(p)
	if !ok {
		return &dto.InternshipListResponse{Internships: []*models.Internship{}}, nil
	}

	if req != nil && req.Status != "" {
		status := models.InternshipStatus(strings.ToUpper(req.Status))
		if !status.Valid() {
			return nil, apperrors.NewValidationError("status", "unknown status "+req.Status)
		}
		filter.Status = &status
	}

	var requested uint64
	if req != nil {
		requested = req.Limit
	}
	filter.Limit = helpers.ClampLimit(requested, defaultListLimit, maxListLimit)

	items, err := s.store.ListInternships(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.InternshipListResponse{Internships: items, Count: len(items)}, nil
}

// AssignAdvisor sets the advisor of a non-terminal internship and records it in the
// ledger with an unchanged status. Coordinators only.
func (s *internshipServiceImpl) AssignAdvisor(ctx context.Context, actorID, internshipID, advisorID int64) (*dto.TransitionResponse, error) {
	if advisorID <= 0 {
		return nil, apperrors.NewValidationError("advisorId", "advisorId is required")
	}

	var (
		record *models.ApprovalRecord
		after  *models.Internship
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		p, in, err := s.authz.LoadForAction(ctx, tx, actorID, internshipID, auth.ActionAssignAdvisor, true)
		if err != nil {
			return err
		}
		role, err := s.authz.Require(p, in, auth.ActionAssignAdvisor)
		if err != nil {
			return err
		}

		if in.Status.IsTerminal() {
			return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
				fmt.Sprintf("cannot assign an advisor to a %s internship", in.Status)).
				WithCode(apperrors.CodeInvalidTransition)
		}

		advisor, err := tx.GetUser(ctx, advisorID)
		if err != nil {
			return err
		}
		if !advisor.IsActive || !advisor.HasRole(models.RoleFacultyAdvisor) {
			return apperrors.NewValidationError("advisorId", "the selected user is not an active faculty advisor")
		}

		if err := tx.UpdateInternshipAdvisor(ctx, in.ID, advisor.ID); err != nil {
			return err
		}

		comment := fmt.Sprintf("advisor %d assigned", advisor.ID)
		record = &models.ApprovalRecord{
			InternshipID: in.ID,
			ApproverID:   p.UserID,
			ApproverRole: role,
			Action:       models.ActionAssignAdvisor,
			FromStatus:   in.Status,
			ResultStatus: in.Status,
			Comment:      &comment,
			ActionAt:     s.now().UTC(),
		}
		if _, err := tx.AppendApproval(ctx, record); err != nil {
			return err
		}

		in.AdvisorID = &advisor.ID
		after = in
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, internshipID).
		Int64("advisorID", advisorID).
		Int64(logger.FieldLedgerEntryID, record.ID).
		Msg("Advisor assigned")

	s.dispatcher.Dispatch(s.planner.ForAssignment(after, actorID)...)

	return &dto.TransitionResponse{
		InternshipID:  internshipID,
		Status:        record.ResultStatus,
		LedgerEntryID: record.ID,
	}, nil
}

// DeleteInternship removes an internship with its ledger and documents. Admins only.
func (s *internshipServiceImpl) DeleteInternship(ctx context.Context, actorID, internshipID int64) error {
	var (
		deleted *models.Internship
		docs    []*models.Document
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, in, err := s.authz.LoadForAction(ctx, tx, actorID, internshipID, auth.ActionDelete, true)
		if err != nil {
			return err
		}
		if docs, err = tx.ListDocuments(ctx, in.ID); err != nil {
			return err
		}
		if err := tx.DeleteInternship(ctx, in.ID); err != nil {
			return err
		}
		deleted = in
		return nil
	})
	if err != nil {
		return err
	}

	// metadata is gone; stray blobs are only logged
	for _, d := range docs {
		if err := s.files.Delete(ctx, d.StoragePath); err != nil {
			s.logger.Warn().Err(err).Int64("documentID", d.ID).Msg("Failed to remove document file")
		}
	}

	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, internshipID).
		Msg("Internship deleted")

	s.dispatcher.Dispatch(s.planner.ForDeletion(deleted, actorID)...)
	return nil
}

// AttachDocument stores an uploaded file for the owning student of a non-terminal internship.
// An empty kind is a plain attachment; reports start out pending review.
func (s *internshipServiceImpl) AttachDocument(ctx context.Context, actorID, internshipID int64, kind models.DocumentKind, file *multipart.FileHeader) (*models.Document, error) {
	if kind == "" {
		kind = models.DocumentAttachment
	}
	if !kind.Valid() {
		return nil, apperrors.NewValidationError("kind", "kind must be ATTACHMENT or REPORT")
	}
	if file == nil {
		return nil, apperrors.NewValidationError("file", "file is required")
	}
	contentType, ok := allowedDocumentTypes[strings.ToLower(filepath.Ext(file.Filename))]
	if !ok {
		return nil, apperrors.NewValidationError("file", "only pdf, doc and docx files are accepted")
	}
	if file.Size > MaxDocumentSize {
		return nil, apperrors.NewValidationError("file", fmt.Sprintf("file must be at most %d bytes", MaxDocumentSize))
	}

	// fail fast before writing the blob
	_, in, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionAttachDocument, false)
	if err != nil {
		return nil, err
	}
	if err := attachable(in); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(ctx, file, fmt.Sprintf("internships/%d", internshipID))
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to store document", err)
	}

	doc := &models.Document{
		InternshipID: internshipID,
		UploadedBy:   actorID,
		Kind:         kind,
		FileName:     stored.Filename,
		ContentType:  contentType,
		FileSize:     stored.FileSize,
		StoragePath:  stored.Path,
	}
	if kind == models.DocumentReport {
		pending := models.ReportPending
		doc.ReportStatus = &pending
	}
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, in, err := s.authz.LoadForAction(ctx, tx, actorID, internshipID, auth.ActionAttachDocument, true)
		if err != nil {
			return err
		}
		if err := attachable(in); err != nil {
			return err
		}
		_, err = tx.AddDocument(ctx, doc)
		return err
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, stored.Path); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", stored.Path).Msg("Failed to remove orphaned document file")
		}
		return nil, err
	}

	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, internshipID).
		Int64("documentID", doc.ID).
		Str("kind", string(doc.Kind)).
		Msg("Document attached")
	return doc, nil
}

// ReviewReport records the verdict of the assigned advisor or a coordinator on a report.
// Rejections and revision requests need feedback. The internship status is not touched.
func (s *internshipServiceImpl) ReviewReport(ctx context.Context, actorID, internshipID, documentID int64, req *dto.ReviewReportRequest) (*models.Document, error) {
	req.Normalize()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	status := models.ReportStatus(req.Status)
	var feedback *string
	if req.Feedback != nil {
		if trimmed := strings.TrimSpace(*req.Feedback); trimmed != "" {
			feedback = &trimmed
		}
	}
	if status.NeedsFeedback() && feedback == nil {
		return nil, apperrors.NewValidationError("feedback", fmt.Sprintf("feedback is required for a %s review", status))
	}

	var (
		in  *models.Internship
		doc *models.Document
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		_, in, err = s.authz.LoadForAction(ctx, tx, actorID, internshipID, auth.ActionReviewReport, true)
		if err != nil {
			return err
		}
		if doc, err = tx.GetDocument(ctx, internshipID, documentID); err != nil {
			return err
		}
		if doc.Kind != models.DocumentReport {
			return apperrors.NewValidationError("documentId", "only reports can be reviewed")
		}

		doc.ReportStatus = &status
		doc.Feedback = feedback
		doc.Grade = req.Grade
		doc.ReviewedBy = &actorID
		return tx.UpdateReportReview(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64(logger.FieldActorID, actorID).
		Int64(logger.FieldInternshipID, internshipID).
		Int64("documentID", documentID).
		Str("reportStatus", string(status)).
		Msg("Report reviewed")

	s.dispatcher.Dispatch(s.planner.ForReportReview(in, doc, actorID)...)
	return doc, nil
}

func attachable(in *models.Internship) error {
	if in.Status.IsTerminal() {
		return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("documents cannot be attached to a %s internship", in.Status)).
			WithCode(apperrors.CodeInvalidTransition)
	}
	return nil
}

// ListDocuments returns the documents of a viewable internship
func (s *internshipServiceImpl) ListDocuments(ctx context.Context, actorID, internshipID int64) ([]*models.Document, error) {
	if _, _, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionView, false); err != nil {
		return nil, err
	}
	return s.store.ListDocuments(ctx, internshipID)
}

// OpenDocument returns a document's metadata and content. The caller closes the reader.
func (s *internshipServiceImpl) OpenDocument(ctx context.Context, actorID, internshipID, documentID int64) (*models.Document, io.ReadCloser, error) {
	if _, _, err := s.authz.LoadForAction(ctx, s.store, actorID, internshipID, auth.ActionView, false); err != nil {
		return nil, nil, err
	}
	doc, err := s.store.GetDocument(ctx, internshipID, documentID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to read document", err)
	}
	return doc, rc, nil
}
