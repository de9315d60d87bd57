package service

import (
	"time"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// The report builders are pure derivations over snapshots of the collections.
// ReportService wraps them with persistence reads and caching; the builders
// themselves never touch storage.

// BuildEnrollmentSummary aggregates portal-wide admission numbers. Grade and
// gender buckets keep first-seen order over their source collections.
func BuildEnrollmentSummary(applications []models.Application, enrollments []models.Enrollment, students []models.Student, now time.Time) models.EnrollmentSummaryReport {
	report := models.EnrollmentSummaryReport{
		TotalApplications: len(applications),
		ByGrade:           []models.GradeCount{},
		ByGender:          []models.GenderCount{},
		Session:           Session(now),
	}

	gradeIndex := map[string]int{}
	for _, application := range applications {
		if application.Status != models.ApplicationStatusApproved && application.Status != models.ApplicationStatusEnrolled {
			continue
		}
		report.ApprovedApplications++
		if i, ok := gradeIndex[application.Grade]; ok {
			report.ByGrade[i].Count++
		} else {
			gradeIndex[application.Grade] = len(report.ByGrade)
			report.ByGrade = append(report.ByGrade, models.GradeCount{Grade: application.Grade, Count: 1})
		}
	}

	genderIndex := map[string]int{}
	for _, student := range students {
		if i, ok := genderIndex[student.Gender]; ok {
			report.ByGender[i].Count++
		} else {
			genderIndex[student.Gender] = len(report.ByGender)
			report.ByGender = append(report.ByGender, models.GenderCount{Gender: student.Gender, Count: 1})
		}
	}

	for _, enrollment := range enrollments {
		if enrollment.Status == models.EnrollmentStatusEnrolled {
			report.EnrolledStudents++
		}
	}
	return report
}

// BuildClassList joins a class's enrolled enrollments to their students.
// Enrollments whose student cannot be found are skipped; the join must never
// fail over a dangling reference.
func BuildClassList(class *models.Class, enrollments []models.Enrollment, students []models.Student) models.ClassListReport {
	studentsByID := make(map[string]models.Student, len(students))
	for _, student := range students {
		studentsByID[student.StudentID] = student
	}

	report := models.ClassListReport{
		ClassName: class.ClassName,
		Section:   class.Section,
		Students:  []models.ClassListEntry{},
	}
	for _, enrollment := range enrollments {
		if enrollment.ClassID != class.ClassID || enrollment.Status != models.EnrollmentStatusEnrolled {
			continue
		}
		student, ok := studentsByID[enrollment.StudentID]
		if !ok {
			continue
		}
		report.Students = append(report.Students, models.ClassListEntry{
			StudentID:      student.StudentID,
			Name:           student.Name,
			Gender:         student.Gender,
			EnrollmentDate: enrollment.Date,
		})
	}
	report.TotalStudents = len(report.Students)
	return report
}

// BuildEnrollmentConfirmation assembles the confirmation slip for an enrolled
// student. The admission date mirrors the student record's creation time.
func BuildEnrollmentConfirmation(student *models.Student, enrollment *models.Enrollment, class *models.Class) models.EnrollmentConfirmation {
	return models.EnrollmentConfirmation{
		StudentName:    student.Name,
		StudentID:      student.StudentID,
		ClassName:      class.ClassName,
		Section:        class.Section,
		Session:        enrollment.Session,
		EnrollmentDate: enrollment.Date,
		AdmissionDate:  student.CreatedAt,
	}
}
