package models

import "time"

// InternshipStatus is the workflow state of an internship
type InternshipStatus string

const (
	StatusPending             InternshipStatus = "PENDING"
	StatusAdvisorReview       InternshipStatus = "ADVISOR_REVIEW"
	StatusAdvisorApproved     InternshipStatus = "ADVISOR_APPROVED"
	StatusCoordinatorReview   InternshipStatus = "COORDINATOR_REVIEW"
	StatusCoordinatorApproved InternshipStatus = "COORDINATOR_APPROVED"
	StatusRevisionRequested   InternshipStatus = "REVISION_REQUESTED"
	StatusRejected            InternshipStatus = "REJECTED"
	StatusCompleted           InternshipStatus = "COMPLETED"
)

// InitialStatus is the status of a freshly created internship
const InitialStatus = StatusPending

// Valid reports whether s is a known status
func (s InternshipStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAdvisorReview, StatusAdvisorApproved, StatusCoordinatorReview,
		StatusCoordinatorApproved, StatusRevisionRequested, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s
func (s InternshipStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// InternshipType distinguishes mandatory internships from voluntary ones
type InternshipType string

const (
	InternshipVoluntary  InternshipType = "VOLUNTARY"
	InternshipCompulsory InternshipType = "COMPULSORY"
)

// Internship defines the internship model based on the 'internships' table
type Internship struct {
	ID        int64            `json:"id" db:"id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	AdvisorID *int64           `json:"advisorId,omitempty" db:"advisor_id"`
	Status    InternshipStatus `json:"status" db:"status"`

	CompanyName    string         `json:"companyName" db:"company_name"`
	CompanyAddress string         `json:"companyAddress" db:"company_address"`
	CompanyPhone   string         `json:"companyPhone" db:"company_phone"`
	StartDate      time.Time      `json:"startDate" db:"start_date"`
	EndDate        time.Time      `json:"endDate" db:"end_date"`
	WorkDays       int            `json:"workDays" db:"work_days"`
	Description    string         `json:"description" db:"description"`
	Type           InternshipType `json:"type" db:"type"`

	IsPaid               bool    `json:"isPaid" db:"is_paid"`
	HasInsuranceSupport  bool    `json:"hasInsuranceSupport" db:"has_insurance_support"`
	HasParentalInsurance bool    `json:"hasParentalInsurance" db:"has_parental_insurance"`
	IBAN                 *string `json:"iban,omitempty" db:"iban"`
	BankName             *string `json:"bankName,omitempty" db:"bank_name"`
	BankBranch           *string `json:"bankBranch,omitempty" db:"bank_branch"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdvisedBy reports whether userID is the currently assigned advisor
func (i *Internship) IsAdvisedBy(userID int64) bool {
	return i.AdvisorID != nil && *i.AdvisorID == userID
}

// InternshipFilter narrows internship listings. Zero values match everything.
type InternshipFilter struct {
	StudentID     *int64
	AdvisorID     *int64
	// ParticipantID matches internships where the user is the student or the advisor
	ParticipantID *int64
	Status        *InternshipStatus
	Limit         uint64
}
