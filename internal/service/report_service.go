package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type applicationLister interface {
	ListAll(ctx context.Context) ([]models.Application, error)
}

type enrollmentLister interface {
	ListAll(ctx context.Context) ([]models.Enrollment, error)
	FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	ListByClass(ctx context.Context, classID string, status models.EnrollmentStatus) ([]models.Enrollment, error)
}

type studentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
}

type classReader interface {
	FindByID(ctx context.Context, classID string) (*models.Class, error)
}

// ReportService derives read-only reports from collection snapshots, with an
// optional cache in front of the heavier ones.
type ReportService struct {
	applications applicationLister
	enrollments  enrollmentLister
	students     studentLister
	classes      classReader
	cache        *CacheService
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService constructs ReportService.
func NewReportService(applications applicationLister, enrollments enrollmentLister, students studentLister, classes classReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		applications: applications,
		enrollments:  enrollments,
		students:     students,
		classes:      classes,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// EnrollmentSummary returns the portal-wide admission summary together with
// a cache-hit indicator.
func (s *ReportService) EnrollmentSummary(ctx context.Context) (*models.EnrollmentSummaryReport, bool, error) {
	const cacheKey = "reports:summary"
	var cached models.EnrollmentSummaryReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	applications, err := s.applications.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applications")
	}
	enrollments, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	report := BuildEnrollmentSummary(applications, enrollments, students, s.now())
	_ = s.cache.Set(ctx, cacheKey, report, s.cacheTTL)
	return &report, false, nil
}

// ClassList returns the enrolled-student roster for one class together with a
// cache-hit indicator.
func (s *ReportService) ClassList(ctx context.Context, classID string) (*models.ClassListReport, bool, error) {
	cacheKey := fmt.Sprintf("reports:class:%s", classID)
	var cached models.ClassListReport
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	enrollments, err := s.enrollments.ListByClass(ctx, classID, models.EnrollmentStatusEnrolled)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	report := BuildClassList(class, enrollments, students)
	if dropped := len(enrollments) - report.TotalStudents; dropped > 0 {
		s.logger.Warn("class list skipped enrollments with missing students",
			zap.String("class_id", classID),
			zap.Int("skipped", dropped))
	}
	_ = s.cache.Set(ctx, cacheKey, report, s.cacheTTL)
	return &report, false, nil
}

// Confirmation returns the enrollment confirmation slip for an enrollment.
func (s *ReportService) Confirmation(ctx context.Context, enrollmentID string) (*models.EnrollmentConfirmation, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "enrollment is not confirmed yet")
	}
	student, err := s.students.FindByID(ctx, enrollment.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found for enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	class, err := s.classes.FindByID(ctx, enrollment.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found for enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	confirmation := BuildEnrollmentConfirmation(student, enrollment, class)
	return &confirmation, nil
}
