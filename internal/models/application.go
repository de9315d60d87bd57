package models

import "time"

// ApplicationStatus represents the lifecycle of an admission application.
type ApplicationStatus string

// Application lifecycle states. Review-stage states (under review, documents
// required, payment pending) are reachable via seeded data but have no
// dedicated transition endpoint yet; consumers must still handle them.
const (
	ApplicationStatusDraft             ApplicationStatus = "draft"
	ApplicationStatusSubmitted         ApplicationStatus = "submitted"
	ApplicationStatusUnderReview       ApplicationStatus = "under_review"
	ApplicationStatusDocumentsRequired ApplicationStatus = "documents_required"
	ApplicationStatusPaymentPending    ApplicationStatus = "payment_pending"
	ApplicationStatusApproved          ApplicationStatus = "approved"
	ApplicationStatusRejected          ApplicationStatus = "rejected"
	ApplicationStatusEnrolled          ApplicationStatus = "enrolled"
)

// KnownApplicationStatuses lists every accepted status value.
var KnownApplicationStatuses = []ApplicationStatus{
	ApplicationStatusDraft,
	ApplicationStatusSubmitted,
	ApplicationStatusUnderReview,
	ApplicationStatusDocumentsRequired,
	ApplicationStatusPaymentPending,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
	ApplicationStatusEnrolled,
}

// Valid reports whether the status is one of the known states.
func (s ApplicationStatus) Valid() bool {
	for _, known := range KnownApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Application captures a prospective student's admission request.
type Application struct {
	ID                string            `db:"id" json:"id"`
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	Email             string            `db:"email" json:"email"`
	Phone             string            `db:"phone" json:"phone"`
	DateOfBirth       time.Time         `db:"date_of_birth" json:"date_of_birth"`
	Gender            string            `db:"gender" json:"gender"`
	Grade             string            `db:"grade" json:"grade"`
	Address           string            `db:"address" json:"address"`
	City              string            `db:"city" json:"city"`
	State             string            `db:"state" json:"state"`
	ZipCode           string            `db:"zip_code" json:"zip_code"`
	Country           string            `db:"country" json:"country"`
	ParentName        string            `db:"parent_name" json:"parent_name"`
	ParentEmail       string            `db:"parent_email" json:"parent_email"`
	ParentPhone       string            `db:"parent_phone" json:"parent_phone"`
	PreviousSchool    string            `db:"previous_school" json:"previous_school,omitempty"`
	MedicalConditions string            `db:"medical_conditions" json:"medical_conditions,omitempty"`
	AdditionalInfo    string            `db:"additional_info" json:"additional_info,omitempty"`
	AdmissionDate     time.Time         `db:"admission_date" json:"admission_date"`
	Status            ApplicationStatus `db:"status" json:"status"`
	SubmittedAt       time.Time         `db:"submitted_at" json:"submitted_at"`
	RejectionReason   *string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ParentID          *string           `db:"parent_id" json:"parent_id,omitempty"`
	StudentID         *string           `db:"student_id" json:"student_id,omitempty"`
	Documents         []Document        `db:"-" json:"documents"`
	Payment           *Payment          `db:"-" json:"payment,omitempty"`
}

// StudentName returns the applicant's display name.
func (a *Application) StudentName() string {
	return a.FirstName + " " + a.LastName
}

// ApplicationFilter restricts application listings.
type ApplicationFilter struct {
	Status    ApplicationStatus
	Grade     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
