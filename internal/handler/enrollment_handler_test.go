package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/service"
)

type enrollmentRepoStub struct {
	enrollments map[string]*models.Enrollment
}

func (m *enrollmentRepoStub) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var list []models.EnrollmentDetail
	for _, e := range m.enrollments {
		list = append(list, models.EnrollmentDetail{Enrollment: *e})
	}
	return list, len(list), nil
}

func (m *enrollmentRepoStub) FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[enrollmentID]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *enrollmentRepoStub) UpdateStatus(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error {
	e, ok := m.enrollments[enrollmentID]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

type applicationAdvancerStub struct {
	advanced map[string]models.ApplicationStatus
}

func (m *applicationAdvancerStub) UpdateStatusByStudent(ctx context.Context, studentID string, status models.ApplicationStatus) error {
	if m.advanced == nil {
		m.advanced = make(map[string]models.ApplicationStatus)
	}
	m.advanced[studentID] = status
	return nil
}

func newEnrollmentHandlerForTest(repo *enrollmentRepoStub, applications *applicationAdvancerStub) *EnrollmentHandler {
	svc := service.NewEnrollmentService(repo, applications, nil, nil, nil)
	return NewEnrollmentHandler(svc)
}

func TestEnrollmentHandlerConfirm(t *testing.T) {
	repo := &enrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"ENR1": {
			EnrollmentID: "ENR1",
			StudentID:    "STU1",
			ClassID:      "class-5",
			Session:      "2024-2025",
			Date:         time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
			Status:       models.EnrollmentStatusPending,
		},
	}}
	applications := &applicationAdvancerStub{}
	handler := newEnrollmentHandlerForTest(repo, applications)

	c, w := testJSONRequest(t, http.MethodPost, "/enrollments/ENR1/confirm", nil)
	c.Params = gin.Params{{Key: "id", Value: "ENR1"}}

	handler.Confirm(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Enrollment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.EnrollmentStatusEnrolled, envelope.Data.Status)
	assert.Equal(t, models.ApplicationStatusEnrolled, applications.advanced["STU1"])
}

func TestEnrollmentHandlerConfirmCancelled(t *testing.T) {
	repo := &enrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"ENR1": {EnrollmentID: "ENR1", StudentID: "STU1", Status: models.EnrollmentStatusCancelled},
	}}
	handler := newEnrollmentHandlerForTest(repo, &applicationAdvancerStub{})

	c, w := testJSONRequest(t, http.MethodPost, "/enrollments/ENR1/confirm", nil)
	c.Params = gin.Params{{Key: "id", Value: "ENR1"}}

	handler.Confirm(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestEnrollmentHandlerCancelConfirmed(t *testing.T) {
	repo := &enrollmentRepoStub{enrollments: map[string]*models.Enrollment{
		"ENR1": {EnrollmentID: "ENR1", StudentID: "STU1", Status: models.EnrollmentStatusEnrolled},
	}}
	handler := newEnrollmentHandlerForTest(repo, &applicationAdvancerStub{})

	c, w := testJSONRequest(t, http.MethodPost, "/enrollments/ENR1/cancel", nil)
	c.Params = gin.Params{{Key: "id", Value: "ENR1"}}

	handler.Cancel(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestEnrollmentHandlerGetNotFound(t *testing.T) {
	handler := newEnrollmentHandlerForTest(&enrollmentRepoStub{}, &applicationAdvancerStub{})

	c, w := testJSONRequest(t, http.MethodGet, "/enrollments/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
