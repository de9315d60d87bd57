package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type applicationRepo interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	Create(ctx context.Context, application *models.Application) error
	MarkApproved(ctx context.Context, id, studentID string) error
	MarkRejected(ctx context.Context, id, reason string) error
	AddDocument(ctx context.Context, document *models.Document) error
	ListDocuments(ctx context.Context, applicationID string) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, applicationID, documentID string, status models.DocumentStatus) error
	SavePayment(ctx context.Context, payment *models.Payment) error
	FindPayment(ctx context.Context, applicationID string) (*models.Payment, error)
}

type studentWriter interface {
	Create(ctx context.Context, student *models.Student) error
}

type classResolver interface {
	FindByName(ctx context.Context, name string) (*models.Class, error)
}

type enrollmentWriter interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
}

// AddDocumentRequest attaches a supporting document to an application.
type AddDocumentRequest struct {
	Name string              `json:"name" validate:"required"`
	Type models.DocumentType `json:"type" validate:"required"`
	URL  string              `json:"url" validate:"required"`
}

// RecordPaymentRequest books the admission fee outcome reported by the
// payment provider.
type RecordPaymentRequest struct {
	Amount        float64              `json:"amount" validate:"required,gt=0"`
	Currency      string               `json:"currency" validate:"required,len=3"`
	Status        models.PaymentStatus `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Method        models.PaymentMethod `json:"method" validate:"required,oneof=credit_card bank_transfer paypal stripe"`
	TransactionID string               `json:"transaction_id"`
}

// RejectApplicationRequest carries the rejection reason.
type RejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// ApprovalResult reports what the approval produced. Enrollment is nil when
// no class matched the applicant's grade.
type ApprovalResult struct {
	Application *models.Application `json:"application"`
	Student     *models.Student     `json:"student"`
	Enrollment  *models.Enrollment  `json:"enrollment,omitempty"`
}

// ApplicationService orchestrates the admission workflow from submission
// through approval or rejection.
type ApplicationService struct {
	repo        applicationRepo
	students    studentWriter
	classes     classResolver
	enrollments enrollmentWriter
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(repo applicationRepo, students studentWriter, classes classResolver, enrollments enrollmentWriter, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:        repo,
		students:    students,
		classes:     classes,
		enrollments: enrollments,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns applications matching the filter with pagination metadata.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application status %q", filter.Status))
	}
	applications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return applications, total, nil
}

// Get returns a single application with its documents.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	application, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	payment, err := s.repo.FindPayment(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	application.Payment = payment
	return application, nil
}

// RecordPayment stores the admission fee record for an application. Payment
// processing happens with an external provider; this only books the outcome
// and never drives a status transition.
func (s *ApplicationService) RecordPayment(ctx context.Context, applicationID string, req RecordPaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.repo.FindByID(ctx, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	payment := &models.Payment{
		ApplicationID: applicationID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Status:        req.Status,
		Method:        req.Method,
		CreatedAt:     s.now(),
	}
	if req.TransactionID != "" {
		txID := req.TransactionID
		payment.TransactionID = &txID
	}
	if err := s.repo.SavePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save payment")
	}
	s.logger.Info("payment recorded",
		zap.String("application_id", applicationID),
		zap.String("status", string(payment.Status)))
	return payment, nil
}

// Submit validates the raw form and, when it passes, persists a submitted
// application. Invalid submissions return the full ordered error list and
// leave no trace.
func (s *ApplicationService) Submit(ctx context.Context, sub ApplicationSubmission) (*models.Application, error) {
	now := s.now()
	result := ValidateApplication(sub, now)
	if !result.Valid {
		return nil, appErrors.Validation(result.Errors)
	}

	// Validation tolerates unparsable dates; persistence does not.
	dob, err := time.Parse(submissionDateLayout, sub.DateOfBirth)
	if err != nil {
		return nil, appErrors.Validation([]string{"Date of birth must use the YYYY-MM-DD format"})
	}
	admission, err := time.Parse(submissionDateLayout, sub.AdmissionDate)
	if err != nil {
		return nil, appErrors.Validation([]string{"Admission date must use the YYYY-MM-DD format"})
	}

	application := &models.Application{
		ID:                NewApplicationID(now),
		FirstName:         sub.FirstName,
		LastName:          sub.LastName,
		Email:             sub.Email,
		Phone:             sub.Phone,
		DateOfBirth:       dob,
		Gender:            sub.Gender,
		Grade:             sub.Grade,
		Address:           sub.Address,
		City:              sub.City,
		State:             sub.State,
		ZipCode:           sub.ZipCode,
		Country:           sub.Country,
		ParentName:        sub.ParentName,
		ParentEmail:       sub.ParentEmail,
		ParentPhone:       sub.ParentPhone,
		PreviousSchool:    sub.PreviousSchool,
		MedicalConditions: sub.MedicalConditions,
		AdditionalInfo:    sub.AdditionalInfo,
		AdmissionDate:     admission,
		Status:            models.ApplicationStatusSubmitted,
		SubmittedAt:       now,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save application")
	}

	s.metrics.RecordApplicationSubmitted()
	s.invalidateReports(ctx)
	s.logger.Info("application submitted",
		zap.String("application_id", application.ID),
		zap.String("grade", application.Grade))
	application.Documents = []models.Document{}
	return application, nil
}

// Approve turns a submitted application into a student record and, when a
// class exists for the applicant's grade, a pending enrollment. The student
// is created first; a missing class leaves the approval standing with no
// enrollment rather than rolling anything back.
func (s *ApplicationService) Approve(ctx context.Context, id, approvedBy string) (*ApprovalResult, error) {
	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status == models.ApplicationStatusApproved || application.Status == models.ApplicationStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application is already approved")
	}
	if application.Status == models.ApplicationStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "rejected applications cannot be approved")
	}

	now := s.now()
	student := NewStudentFromApplication(application, now)
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	if err := s.repo.MarkApproved(ctx, id, student.StudentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve application")
	}
	application.Status = models.ApplicationStatusApproved
	application.StudentID = &student.StudentID

	result := &ApprovalResult{Application: application, Student: student}

	class, err := s.classes.FindByName(ctx, application.Grade)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordApprovalMissingClass()
			s.logger.Warn("no class for grade, approval left without enrollment",
				zap.String("application_id", id),
				zap.String("student_id", student.StudentID),
				zap.String("grade", application.Grade))
			s.metrics.RecordApplicationApproved()
			s.invalidateReports(ctx)
			return result, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class for grade")
	}

	enrollment := NewEnrollment(student, class, approvedBy, now)
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	result.Enrollment = enrollment

	s.metrics.RecordApplicationApproved()
	s.invalidateReports(ctx)
	s.logger.Info("application approved",
		zap.String("application_id", id),
		zap.String("student_id", student.StudentID),
		zap.String("enrollment_id", enrollment.EnrollmentID),
		zap.String("approved_by", approvedBy))
	return result, nil
}

// Reject marks an application rejected with an optional reason. Rejection is
// terminal but repeatable; rejecting twice just rewrites the reason.
func (s *ApplicationService) Reject(ctx context.Context, id string, req RejectApplicationRequest) (*models.Application, error) {
	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status == models.ApplicationStatusApproved || application.Status == models.ApplicationStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "approved applications cannot be rejected")
	}
	if err := s.repo.MarkRejected(ctx, id, req.Reason); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject application")
	}
	application.Status = models.ApplicationStatusRejected
	if req.Reason != "" {
		reason := req.Reason
		application.RejectionReason = &reason
	}
	s.metrics.RecordApplicationRejected()
	s.invalidateReports(ctx)
	s.logger.Info("application rejected",
		zap.String("application_id", id),
		zap.String("reason", req.Reason))
	return application, nil
}

// AddDocument uploads a supporting document for an application. New documents
// always start pending.
func (s *ApplicationService) AddDocument(ctx context.Context, applicationID string, req AddDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown document type %q", req.Type))
	}
	if _, err := s.Get(ctx, applicationID); err != nil {
		return nil, err
	}
	document := &models.Document{
		ApplicationID: applicationID,
		Name:          req.Name,
		Type:          req.Type,
		URL:           req.URL,
		Status:        models.DocumentStatusPending,
		UploadedAt:    s.now(),
	}
	if err := s.repo.AddDocument(ctx, document); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add document")
	}
	s.logger.Info("document added",
		zap.String("application_id", applicationID),
		zap.String("document_id", document.ID),
		zap.String("type", string(document.Type)))
	return document, nil
}

// VerifyDocument marks a document verified.
func (s *ApplicationService) VerifyDocument(ctx context.Context, applicationID, documentID string) error {
	return s.setDocumentStatus(ctx, applicationID, documentID, models.DocumentStatusVerified)
}

// RejectDocument marks a document rejected.
func (s *ApplicationService) RejectDocument(ctx context.Context, applicationID, documentID string) error {
	return s.setDocumentStatus(ctx, applicationID, documentID, models.DocumentStatusRejected)
}

// setDocumentStatus applies a terminal verification outcome. Re-applying the
// same outcome is a no-op; flipping between the two terminal states is not
// allowed.
func (s *ApplicationService) setDocumentStatus(ctx context.Context, applicationID, documentID string, status models.DocumentStatus) error {
	documents, err := s.repo.ListDocuments(ctx, applicationID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load documents")
	}
	for _, document := range documents {
		if document.ID != documentID {
			continue
		}
		if document.Status == status {
			return nil
		}
		if document.Status != models.DocumentStatusPending {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "document verification is final")
		}
		break
	}
	if err := s.repo.UpdateDocumentStatus(ctx, applicationID, documentID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document status")
	}
	s.logger.Info("document status changed",
		zap.String("application_id", applicationID),
		zap.String("document_id", documentID),
		zap.String("status", string(status)))
	return nil
}

func (s *ApplicationService) invalidateReports(ctx context.Context) {
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "reports:*")
	}
}
