package models

import "time"

// Student represents an admitted learner. The record is a demographic copy of
// the approved application taken at approval time; students are never deleted.
type Student struct {
	StudentID         string    `db:"student_id" json:"student_id"`
	Name              string    `db:"name" json:"name"`
	DateOfBirth       time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender            string    `db:"gender" json:"gender"`
	Address           string    `db:"address" json:"address"`
	City              string    `db:"city" json:"city"`
	State             string    `db:"state" json:"state"`
	ZipCode           string    `db:"zip_code" json:"zip_code"`
	Country           string    `db:"country" json:"country"`
	Email             string    `db:"email" json:"email"`
	Phone             string    `db:"phone" json:"phone"`
	ParentName        string    `db:"parent_name" json:"parent_name"`
	ParentEmail       string    `db:"parent_email" json:"parent_email"`
	ParentPhone       string    `db:"parent_phone" json:"parent_phone"`
	PreviousSchool    string    `db:"previous_school" json:"previous_school,omitempty"`
	MedicalConditions string    `db:"medical_conditions" json:"medical_conditions,omitempty"`
	AdditionalInfo    string    `db:"additional_info" json:"additional_info,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Gender    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
