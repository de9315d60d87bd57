package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type mockEnrollmentStore struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentStore) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		list = append(list, models.EnrollmentDetail{Enrollment: *e})
	}
	return list, len(list), nil
}

func (m *mockEnrollmentStore) FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[enrollmentID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentStore) UpdateStatus(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error {
	e, ok := m.enrollments[enrollmentID]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

type mockApplicationAdvancer struct {
	advanced map[string]models.ApplicationStatus
	err      error
}

func (m *mockApplicationAdvancer) UpdateStatusByStudent(ctx context.Context, studentID string, status models.ApplicationStatus) error {
	if m.err != nil {
		return m.err
	}
	if m.advanced == nil {
		m.advanced = make(map[string]models.ApplicationStatus)
	}
	m.advanced[studentID] = status
	return nil
}

func pendingEnrollment(id, studentID string) *models.Enrollment {
	return &models.Enrollment{
		EnrollmentID: id,
		StudentID:    studentID,
		ClassID:      "class-5",
		Session:      "2024-2025",
		Date:         time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
		Status:       models.EnrollmentStatusPending,
	}
}

func TestEnrollmentServiceConfirm(t *testing.T) {
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{
		"ENR1": pendingEnrollment("ENR1", "STU1"),
	}}
	applications := &mockApplicationAdvancer{}
	svc := NewEnrollmentService(repo, applications, nil, NewMetricsService(), zap.NewNop())

	enrollment, err := svc.Confirm(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	assert.Equal(t, models.EnrollmentStatusEnrolled, repo.enrollments["ENR1"].Status)
	assert.Equal(t, models.ApplicationStatusEnrolled, applications.advanced["STU1"])
}

func TestEnrollmentServiceConfirmIdempotent(t *testing.T) {
	enrolled := pendingEnrollment("ENR1", "STU1")
	enrolled.Status = models.EnrollmentStatusEnrolled
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{"ENR1": enrolled}}
	applications := &mockApplicationAdvancer{}
	svc := NewEnrollmentService(repo, applications, nil, NewMetricsService(), zap.NewNop())

	enrollment, err := svc.Confirm(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	assert.Empty(t, applications.advanced)
}

func TestEnrollmentServiceConfirmCancelled(t *testing.T) {
	cancelled := pendingEnrollment("ENR1", "STU1")
	cancelled.Status = models.EnrollmentStatusCancelled
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{"ENR1": cancelled}}
	svc := NewEnrollmentService(repo, &mockApplicationAdvancer{}, nil, NewMetricsService(), zap.NewNop())

	_, err := svc.Confirm(context.Background(), "ENR1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestEnrollmentServiceConfirmSurvivesApplicationDrift(t *testing.T) {
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{
		"ENR1": pendingEnrollment("ENR1", "STU1"),
	}}
	applications := &mockApplicationAdvancer{err: errors.New("db down")}
	svc := NewEnrollmentService(repo, applications, nil, NewMetricsService(), zap.NewNop())

	enrollment, err := svc.Confirm(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
}

func TestEnrollmentServiceCancel(t *testing.T) {
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{
		"ENR1": pendingEnrollment("ENR1", "STU1"),
	}}
	svc := NewEnrollmentService(repo, &mockApplicationAdvancer{}, nil, NewMetricsService(), zap.NewNop())

	enrollment, err := svc.Cancel(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, enrollment.Status)

	// Cancelling again is a no-op.
	enrollment, err = svc.Cancel(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCancelled, enrollment.Status)
}

func TestEnrollmentServiceCancelConfirmed(t *testing.T) {
	enrolled := pendingEnrollment("ENR1", "STU1")
	enrolled.Status = models.EnrollmentStatusEnrolled
	repo := &mockEnrollmentStore{enrollments: map[string]*models.Enrollment{"ENR1": enrolled}}
	svc := NewEnrollmentService(repo, &mockApplicationAdvancer{}, nil, NewMetricsService(), zap.NewNop())

	_, err := svc.Cancel(context.Background(), "ENR1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, err.(*appErrors.Error).Code)
}

func TestEnrollmentServiceListRejectsUnknownStatus(t *testing.T) {
	repo := &mockEnrollmentStore{}
	svc := NewEnrollmentService(repo, &mockApplicationAdvancer{}, nil, NewMetricsService(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.EnrollmentFilter{Status: "active"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, err.(*appErrors.Error).Code)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, err.(*appErrors.Error).Code)
}
