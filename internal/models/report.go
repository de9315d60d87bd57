package models

import "time"

// GradeCount is a per-grade bucket in the enrollment summary. Bucket order is
// first-seen order over the source applications.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// GenderCount is a per-gender bucket in the enrollment summary.
type GenderCount struct {
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}

// EnrollmentSummaryReport aggregates portal-wide admission numbers.
type EnrollmentSummaryReport struct {
	TotalApplications    int           `json:"total_applications"`
	ApprovedApplications int           `json:"approved_applications"`
	EnrolledStudents     int           `json:"enrolled_students"`
	ByGrade              []GradeCount  `json:"by_grade"`
	ByGender             []GenderCount `json:"by_gender"`
	Session              string        `json:"session"`
}

// ClassListEntry is one enrolled student row in a class list report.
type ClassListEntry struct {
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name"`
	Gender         string    `json:"gender"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

// ClassListReport lists all enrolled students for a single class.
type ClassListReport struct {
	ClassName     string           `json:"class_name"`
	Section       string           `json:"section"`
	Students      []ClassListEntry `json:"students"`
	TotalStudents int              `json:"total_students"`
}

// EnrollmentConfirmation is the read-only confirmation slip handed to a
// newly enrolled student. The admission date mirrors the student record's
// creation time, matching what the portal has always printed.
type EnrollmentConfirmation struct {
	StudentName    string    `json:"student_name"`
	StudentID      string    `json:"student_id"`
	ClassName      string    `json:"class_name"`
	Section        string    `json:"section"`
	Session        string    `json:"session"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	AdmissionDate  time.Time `json:"admission_date"`
}

// ExportFormat enumerates supported report export encodings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportJobStatus tracks the lifecycle of an async export job.
type ExportJobStatus string

const (
	ExportJobStatusQueued    ExportJobStatus = "QUEUED"
	ExportJobStatusRunning   ExportJobStatus = "RUNNING"
	ExportJobStatusCompleted ExportJobStatus = "COMPLETED"
	ExportJobStatusFailed    ExportJobStatus = "FAILED"
)

// ExportJob describes an asynchronous report export request.
type ExportJob struct {
	ID           string          `json:"id"`
	Report       string          `json:"report"`
	Format       ExportFormat    `json:"format"`
	ClassID      string          `json:"class_id,omitempty"`
	EnrollmentID string          `json:"enrollment_id,omitempty"`
	Status       ExportJobStatus `json:"status"`
	FilePath     string          `json:"-"`
	DownloadURL  string          `json:"download_url,omitempty"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	Error        string          `json:"error,omitempty"`
	RequestedBy  string          `json:"requested_by"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}
