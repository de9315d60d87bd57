package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type mockReportSource struct {
	applications []models.Application
}

func (m *mockReportSource) ListAll(ctx context.Context) ([]models.Application, error) {
	return m.applications, nil
}

type mockEnrollmentSource struct {
	enrollments []models.Enrollment
}

func (m *mockEnrollmentSource) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	return m.enrollments, nil
}

func (m *mockEnrollmentSource) FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	for i := range m.enrollments {
		if m.enrollments[i].EnrollmentID == enrollmentID {
			return &m.enrollments[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentSource) ListByClass(ctx context.Context, classID string, status models.EnrollmentStatus) ([]models.Enrollment, error) {
	var list []models.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID && e.Status == status {
			list = append(list, e)
		}
	}
	return list, nil
}

type mockStudentSource struct {
	students []models.Student
}

func (m *mockStudentSource) ListAll(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

func (m *mockStudentSource) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].StudentID == studentID {
			return &m.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockClassSource struct {
	classes map[string]*models.Class
}

func (m *mockClassSource) FindByID(ctx context.Context, classID string) (*models.Class, error) {
	if c, ok := m.classes[classID]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func newReportServiceUnderTest(enrollments *mockEnrollmentSource, students *mockStudentSource, classes *mockClassSource, applications []models.Application, cacheRepo CacheRepository) *ReportService {
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	svc := NewReportService(&mockReportSource{applications: applications}, enrollments, students, classes, cacheSvc, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestReportServiceEnrollmentSummaryCaches(t *testing.T) {
	cacheRepo := &memoryCacheRepo{}
	svc := newReportServiceUnderTest(
		&mockEnrollmentSource{enrollments: []models.Enrollment{{EnrollmentID: "ENR1", Status: models.EnrollmentStatusEnrolled}}},
		&mockStudentSource{students: []models.Student{{StudentID: "STU1", Gender: "female"}}},
		&mockClassSource{},
		[]models.Application{{Grade: "Grade 5", Status: models.ApplicationStatusApproved}},
		cacheRepo,
	)

	report, cacheHit, err := svc.EnrollmentSummary(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, report.TotalApplications)
	assert.Equal(t, 1, report.EnrolledStudents)
	assert.Equal(t, "2024-2025", report.Session)

	cached, cacheHit, err := svc.EnrollmentSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, cacheHit)
	assert.Equal(t, report, cached)
}

func TestReportServiceClassList(t *testing.T) {
	enrollments := &mockEnrollmentSource{enrollments: []models.Enrollment{
		{EnrollmentID: "ENR1", StudentID: "STU1", ClassID: "class-5", Status: models.EnrollmentStatusEnrolled},
		{EnrollmentID: "ENR2", StudentID: "GONE", ClassID: "class-5", Status: models.EnrollmentStatusEnrolled},
	}}
	students := &mockStudentSource{students: []models.Student{{StudentID: "STU1", Name: "Ada Okafor", Gender: "female"}}}
	classes := &mockClassSource{classes: map[string]*models.Class{
		"class-5": {ClassID: "class-5", ClassName: "Grade 5", Section: "A"},
	}}
	svc := newReportServiceUnderTest(enrollments, students, classes, nil, nil)

	report, cacheHit, err := svc.ClassList(context.Background(), "class-5")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, report.TotalStudents)

	_, _, err = svc.ClassList(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, err.(*appErrors.Error).Code)
}

func TestReportServiceConfirmation(t *testing.T) {
	created := time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC)
	enrollments := &mockEnrollmentSource{enrollments: []models.Enrollment{
		{EnrollmentID: "ENR1", StudentID: "STU1", ClassID: "class-5", Session: "2024-2025", Status: models.EnrollmentStatusEnrolled},
		{EnrollmentID: "ENR2", StudentID: "STU1", ClassID: "class-5", Status: models.EnrollmentStatusPending},
	}}
	students := &mockStudentSource{students: []models.Student{{StudentID: "STU1", Name: "Ada Okafor", CreatedAt: created}}}
	classes := &mockClassSource{classes: map[string]*models.Class{
		"class-5": {ClassID: "class-5", ClassName: "Grade 5", Section: "A"},
	}}
	svc := newReportServiceUnderTest(enrollments, students, classes, nil, nil)

	confirmation, err := svc.Confirmation(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Okafor", confirmation.StudentName)
	assert.Equal(t, created, confirmation.AdmissionDate)

	_, err = svc.Confirmation(context.Background(), "ENR2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)

	_, err = svc.Confirmation(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, err.(*appErrors.Error).Code)
}
