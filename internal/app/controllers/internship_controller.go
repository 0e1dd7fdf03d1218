package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/services"
	"github.com/yigit/internflow/internal/middleware"
	"github.com/yigit/internflow/internal/pkg/logger"
)

// InternshipController handles internship applications and their documents
type InternshipController struct {
	internshipService services.InternshipService
	logger            zerolog.Logger
}

// NewInternshipController creates a new InternshipController
func NewInternshipController(internshipService services.InternshipService, logger zerolog.Logger) *InternshipController {
	return &InternshipController{
		internshipService: internshipService,
		logger:            logger,
	}
}

// CreateInternship godoc
// @Summary Submit an internship application
// @Description Students submit a new application; it starts in PENDING
// @Tags internships
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateInternshipRequest true "Application form"
// @Success 201 {object} dto.APIResponse{data=models.Internship}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships [post]
func (c *InternshipController) CreateInternship(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	var req dto.CreateInternshipRequest
	if !bindJSON(ctx, &req) {
		return
	}

	internship, err := c.internshipService.CreateInternship(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(internship))
}

// GetInternship godoc
// @Summary Get an internship
// @Tags internships
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=models.Internship}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id} [get]
func (c *InternshipController) GetInternship(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	internship, err := c.internshipService.GetInternship(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(internship))
}

// ListInternships godoc
// @Summary List visible internships
// @Description Students see their own, advisors their assigned ones, coordinators and admins all
// @Tags internships
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default: 100, max: 500)"
// @Success 200 {object} dto.APIResponse{data=dto.InternshipListResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships [get]
func (c *InternshipController) ListInternships(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}

	var req dto.ListInternshipsRequest
	if !bindQuery(ctx, &req) {
		return
	}

	list, err := c.internshipService.ListInternships(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// AssignAdvisor godoc
// @Summary Assign the faculty advisor
// @Tags internships
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param request body dto.AssignAdvisorRequest true "Advisor"
// @Success 200 {object} dto.APIResponse{data=dto.TransitionResponse}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 409 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/advisor [put]
func (c *InternshipController) AssignAdvisor(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	var req dto.AssignAdvisorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.internshipService.AssignAdvisor(ctx.Request.Context(), userID, id, req.AdvisorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// DeleteInternship godoc
// @Summary Delete an internship
// @Description Admin only; removes the application, its ledger and its documents
// @Tags internships
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageData}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id} [delete]
func (c *InternshipController) DeleteInternship(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	if err := c.internshipService.DeleteInternship(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageData{Message: "Internship deleted successfully"}))
}

// UploadDocument godoc
// @Summary Attach a document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param file formData file true "PDF or Word document"
// @Param kind formData string false "ATTACHMENT (default) or REPORT"
// @Success 201 {object} dto.APIResponse{data=models.Document}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/documents [post]
func (c *InternshipController) UploadDocument(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid or missing file").WithField("file"),
		})
		return
	}

	kind := models.DocumentKind(strings.ToUpper(strings.TrimSpace(ctx.PostForm("kind"))))
	doc, err := c.internshipService.AttachDocument(ctx.Request.Context(), userID, id, kind, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(doc))
}

// ListDocuments godoc
// @Summary List an internship's documents
// @Tags documents
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentListResponse}
// @Router /internships/{id}/documents [get]
func (c *InternshipController) ListDocuments(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}

	docs, err := c.internshipService.ListDocuments(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.DocumentListResponse{Documents: docs}))
}

// DownloadDocument streams a document to the caller
// @Summary Download a document
// @Tags documents
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param documentId path int true "Document ID"
// @Success 200 {file} file
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/documents/{documentId} [get]
func (c *InternshipController) DownloadDocument(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}
	documentID, ok := requireID(ctx, "documentId", "document")
	if !ok {
		return
	}

	doc, body, err := c.internshipService.OpenDocument(ctx.Request.Context(), userID, id, documentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer body.Close()

	c.logger.Debug().
		Int64(logger.FieldInternshipID, id).
		Int64("documentID", documentID).
		Msg("Serving document")

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	ctx.DataFromReader(http.StatusOK, doc.FileSize, doc.ContentType, body, nil)
}

// ReviewReport godoc
// @Summary Review an internship report
// @Description The assigned advisor or a coordinator grades a report. REJECTED and REVISION need feedback.
// @Tags documents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Internship ID"
// @Param documentId path int true "Document ID"
// @Param request body dto.ReviewReportRequest true "Review"
// @Success 200 {object} dto.APIResponse{data=models.Document}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 403 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Failure 404 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /internships/{id}/documents/{documentId}/review [put]
func (c *InternshipController) ReviewReport(ctx *gin.Context) {
	userID, ok := actorID(ctx)
	if !ok {
		return
	}
	id, ok := requireID(ctx, "id", "internship")
	if !ok {
		return
	}
	documentID, ok := requireID(ctx, "documentId", "document")
	if !ok {
		return
	}

	var req dto.ReviewReportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	doc, err := c.internshipService.ReviewReport(ctx.Request.Context(), userID, id, documentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(doc))
}
