package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// Session derives the academic-year label for the given moment,
// e.g. "2026-2027".
func Session(now time.Time) string {
	year := now.Year()
	return fmt.Sprintf("%d-%d", year, year+1)
}

// NewStudentFromApplication copies the demographic fields of an approved
// application into a fresh student record. Callers are responsible for only
// invoking this after approval.
func NewStudentFromApplication(application *models.Application, now time.Time) *models.Student {
	return &models.Student{
		StudentID:         NewStudentID(now),
		Name:              application.StudentName(),
		DateOfBirth:       application.DateOfBirth,
		Gender:            application.Gender,
		Address:           application.Address,
		City:              application.City,
		State:             application.State,
		ZipCode:           application.ZipCode,
		Country:           application.Country,
		Email:             application.Email,
		Phone:             application.Phone,
		ParentName:        application.ParentName,
		ParentEmail:       application.ParentEmail,
		ParentPhone:       application.ParentPhone,
		PreviousSchool:    application.PreviousSchool,
		MedicalConditions: application.MedicalConditions,
		AdditionalInfo:    application.AdditionalInfo,
		CreatedAt:         now,
	}
}

// NewEnrollment links a student to a class for the session containing now.
// The enrollment starts pending; only an explicit confirmation advances it.
func NewEnrollment(student *models.Student, class *models.Class, approvedBy string, now time.Time) *models.Enrollment {
	enrollment := &models.Enrollment{
		EnrollmentID: NewEnrollmentID(now),
		StudentID:    student.StudentID,
		ClassID:      class.ClassID,
		Session:      Session(now),
		Date:         now,
		Status:       models.EnrollmentStatusPending,
	}
	if approvedBy != "" {
		enrollment.ApprovedBy = &approvedBy
	}
	return enrollment
}
