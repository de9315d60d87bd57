package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. An enrollment starts pending at approval time
// and is advanced to enrolled only by an explicit confirmation.
const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusApproved  EnrollmentStatus = "approved"
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// Valid reports whether the status is one of the known states.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusApproved, EnrollmentStatusEnrolled, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Enrollment links an admitted student to a class for an academic session.
type Enrollment struct {
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	ClassID      string           `db:"class_id" json:"class_id"`
	Session      string           `db:"session" json:"session"`
	Date         time.Time        `db:"date" json:"date"`
	ApprovedBy   *string          `db:"approved_by" json:"approved_by,omitempty"`
	Status       EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with student and class info for listings.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	Section     string `db:"section" json:"section"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	ClassID   string
	Session   string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
