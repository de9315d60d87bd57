package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type enrollmentRepo interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error
}

type applicationStatusByStudent interface {
	UpdateStatusByStudent(ctx context.Context, studentID string, status models.ApplicationStatus) error
}

// EnrollmentService manages the enrollment lifecycle after approval.
type EnrollmentService struct {
	repo         enrollmentRepo
	applications applicationStatusByStudent
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepo, applications applicationStatusByStudent, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:         repo,
		applications: applications,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
	}
}

// List returns enrollments with student and class context.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, total, nil
}

// Get returns one enrollment.
func (s *EnrollmentService) Get(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

// Confirm moves a pending enrollment to enrolled and advances the owning
// application to its terminal enrolled state.
func (s *EnrollmentService) Confirm(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	switch enrollment.Status {
	case models.EnrollmentStatusEnrolled:
		return enrollment, nil
	case models.EnrollmentStatusCancelled:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cancelled enrollments cannot be confirmed")
	}

	if err := s.repo.UpdateStatus(ctx, enrollmentID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm enrollment")
	}
	enrollment.Status = models.EnrollmentStatusEnrolled

	if err := s.applications.UpdateStatusByStudent(ctx, enrollment.StudentID, models.ApplicationStatusEnrolled); err != nil {
		// The enrollment is already confirmed; surface the drift instead of
		// failing the confirmation.
		s.logger.Error("failed to advance application to enrolled",
			zap.String("enrollment_id", enrollmentID),
			zap.String("student_id", enrollment.StudentID),
			zap.Error(err))
	}

	s.metrics.RecordEnrollmentConfirmed()
	s.invalidateReports(ctx)
	s.logger.Info("enrollment confirmed",
		zap.String("enrollment_id", enrollmentID),
		zap.String("student_id", enrollment.StudentID),
		zap.String("class_id", enrollment.ClassID))
	return enrollment, nil
}

// Cancel marks an enrollment cancelled. Enrolled enrollments stay put.
func (s *EnrollmentService) Cancel(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.Get(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	switch enrollment.Status {
	case models.EnrollmentStatusCancelled:
		return enrollment, nil
	case models.EnrollmentStatusEnrolled:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "confirmed enrollments cannot be cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, enrollmentID, models.EnrollmentStatusCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel enrollment")
	}
	enrollment.Status = models.EnrollmentStatusCancelled

	s.invalidateReports(ctx)
	s.logger.Info("enrollment cancelled",
		zap.String("enrollment_id", enrollmentID),
		zap.String("student_id", enrollment.StudentID))
	return enrollment, nil
}

func (s *EnrollmentService) invalidateReports(ctx context.Context) {
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "reports:*")
	}
}
