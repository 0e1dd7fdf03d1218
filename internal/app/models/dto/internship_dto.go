package dto

import (
	"strings"

	"github.com/yigit/internflow/internal/app/models"
)

// DateLayout is the wire format of internship dates
const DateLayout = "2006-01-02"

// CreateInternshipRequest represents the internship application form
type CreateInternshipRequest struct {
	CompanyName          string  `json:"companyName" validate:"required,max=255" example:"Acme Corp"`
	CompanyAddress       string  `json:"companyAddress" validate:"required,max=500" example:"Maslak, Istanbul"`
	CompanyPhone         string  `json:"companyPhone" validate:"required,phone" example:"+90 212 555 0000"`
	StartDate            string  `json:"startDate" validate:"required,datetime=2006-01-02" example:"2025-07-01"`
	EndDate              string  `json:"endDate" validate:"required,datetime=2006-01-02" example:"2025-08-26"`
	WorkDays             int     `json:"workDays" validate:"required,gt=0" example:"40"`
	Description          string  `json:"description" validate:"max=2000" example:"Backend development internship"`
	Type                 string  `json:"type" validate:"required,oneof=VOLUNTARY COMPULSORY" example:"COMPULSORY"`
	IsPaid               bool    `json:"isPaid" example:"true"`
	HasInsuranceSupport  bool    `json:"hasInsuranceSupport" example:"false"`
	HasParentalInsurance bool    `json:"hasParentalInsurance" example:"true"`
	IBAN                 *string `json:"iban,omitempty" validate:"omitempty,iban" example:"TR330006100519786457841326"`
	BankName             *string `json:"bankName,omitempty" validate:"omitempty,max=100" example:"Ziraat"`
	BankBranch           *string `json:"bankBranch,omitempty" validate:"omitempty,max=100" example:"Levent"`
}

// ListInternshipsRequest holds the listing query parameters
type ListInternshipsRequest struct {
	Status string `form:"status"`
	Limit  uint64 `form:"limit"`
}

// InternshipListResponse is a scoped internship listing
type InternshipListResponse struct {
	Internships []*models.Internship `json:"internships"`
	Count       int                  `json:"count" example:"3"`
}

// AssignAdvisorRequest names the advisor to assign
type AssignAdvisorRequest struct {
	AdvisorID int64 `json:"advisorId" validate:"required,gt=0" example:"12"`
}

// DocumentListResponse lists an internship's documents
type DocumentListResponse struct {
	Documents []*models.Document `json:"documents"`
}

// ReviewReportRequest is a reviewer's verdict on an internship report
type ReviewReportRequest struct {
	Status   string  `json:"status" validate:"required,oneof=APPROVED REJECTED REVISION COMPLETED" example:"REVISION"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=2000" example:"Add the weekly summaries"`
	Grade    *int    `json:"grade,omitempty" validate:"omitempty,min=0,max=100" example:"85"`
}

// Normalize accepts the status in any case
func (r *ReviewReportRequest) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}
