package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/models"
)

func TestBuildEnrollmentSummaryEmpty(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	report := BuildEnrollmentSummary(nil, nil, nil, now)

	assert.Equal(t, 0, report.TotalApplications)
	assert.Equal(t, 0, report.ApprovedApplications)
	assert.Equal(t, 0, report.EnrolledStudents)
	assert.Equal(t, "2024-2025", report.Session)
	assert.NotNil(t, report.ByGrade)
	assert.Empty(t, report.ByGrade)
	assert.NotNil(t, report.ByGender)
	assert.Empty(t, report.ByGender)
}

func TestBuildEnrollmentSummaryCounts(t *testing.T) {
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	applications := []models.Application{
		{Grade: "Grade 5", Status: models.ApplicationStatusApproved},
		{Grade: "Grade 3", Status: models.ApplicationStatusSubmitted},
		{Grade: "Grade 3", Status: models.ApplicationStatusEnrolled},
		{Grade: "Grade 5", Status: models.ApplicationStatusEnrolled},
		{Grade: "Grade 7", Status: models.ApplicationStatusRejected},
	}
	students := []models.Student{
		{StudentID: "STU1", Gender: "female"},
		{StudentID: "STU2", Gender: "male"},
		{StudentID: "STU3", Gender: "female"},
	}
	enrollments := []models.Enrollment{
		{EnrollmentID: "ENR1", Status: models.EnrollmentStatusEnrolled},
		{EnrollmentID: "ENR2", Status: models.EnrollmentStatusPending},
		{EnrollmentID: "ENR3", Status: models.EnrollmentStatusCancelled},
	}

	report := BuildEnrollmentSummary(applications, enrollments, students, now)

	assert.Equal(t, 5, report.TotalApplications)
	assert.Equal(t, 3, report.ApprovedApplications)
	assert.Equal(t, 1, report.EnrolledStudents)

	// Grade buckets cover approved and enrolled applications, first-seen order.
	require.Len(t, report.ByGrade, 2)
	assert.Equal(t, models.GradeCount{Grade: "Grade 5", Count: 2}, report.ByGrade[0])
	assert.Equal(t, models.GradeCount{Grade: "Grade 3", Count: 1}, report.ByGrade[1])

	// Gender buckets cover every admitted student.
	require.Len(t, report.ByGender, 2)
	assert.Equal(t, models.GenderCount{Gender: "female", Count: 2}, report.ByGender[0])
	assert.Equal(t, models.GenderCount{Gender: "male", Count: 1}, report.ByGender[1])
}

func TestBuildClassListSkipsMissingStudents(t *testing.T) {
	class := &models.Class{ClassID: "class-5", ClassName: "Grade 5", Section: "A"}
	date := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	enrollments := []models.Enrollment{
		{EnrollmentID: "ENR1", StudentID: "STU1", ClassID: "class-5", Status: models.EnrollmentStatusEnrolled, Date: date},
		{EnrollmentID: "ENR2", StudentID: "GONE", ClassID: "class-5", Status: models.EnrollmentStatusEnrolled, Date: date},
		{EnrollmentID: "ENR3", StudentID: "STU2", ClassID: "class-5", Status: models.EnrollmentStatusPending, Date: date},
		{EnrollmentID: "ENR4", StudentID: "STU2", ClassID: "other", Status: models.EnrollmentStatusEnrolled, Date: date},
	}
	students := []models.Student{
		{StudentID: "STU1", Name: "Ada Okafor", Gender: "female"},
		{StudentID: "STU2", Name: "Ben Carter", Gender: "male"},
	}

	report := BuildClassList(class, enrollments, students)

	assert.Equal(t, "Grade 5", report.ClassName)
	assert.Equal(t, "A", report.Section)
	require.Len(t, report.Students, 1)
	assert.Equal(t, "STU1", report.Students[0].StudentID)
	assert.Equal(t, "Ada Okafor", report.Students[0].Name)
	assert.Equal(t, 1, report.TotalStudents)
}

func TestBuildClassListEmpty(t *testing.T) {
	class := &models.Class{ClassID: "class-1", ClassName: "Grade 1", Section: "B"}
	report := BuildClassList(class, nil, nil)

	assert.NotNil(t, report.Students)
	assert.Empty(t, report.Students)
	assert.Equal(t, 0, report.TotalStudents)
}

func TestBuildEnrollmentConfirmation(t *testing.T) {
	created := time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	enrolled := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	student := &models.Student{StudentID: "STU1", Name: "Ada Okafor", CreatedAt: created}
	enrollment := &models.Enrollment{EnrollmentID: "ENR1", Session: "2024-2025", Date: enrolled}
	class := &models.Class{ClassName: "Grade 5", Section: "A"}

	confirmation := BuildEnrollmentConfirmation(student, enrollment, class)

	assert.Equal(t, "Ada Okafor", confirmation.StudentName)
	assert.Equal(t, "STU1", confirmation.StudentID)
	assert.Equal(t, "Grade 5", confirmation.ClassName)
	assert.Equal(t, "A", confirmation.Section)
	assert.Equal(t, "2024-2025", confirmation.Session)
	assert.Equal(t, enrolled, confirmation.EnrollmentDate)
	// The admission date mirrors when the student record was created.
	assert.Equal(t, created, confirmation.AdmissionDate)
}
