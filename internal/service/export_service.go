package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/pkg/errors"
	"github.com/noah-isme/eduportal-api/pkg/export"
	"github.com/noah-isme/eduportal-api/pkg/jobs"
	"github.com/noah-isme/eduportal-api/pkg/storage"
)

// Report names accepted by the export endpoint.
const (
	ExportReportSummary      = "summary"
	ExportReportClassList    = "class_list"
	ExportReportConfirmation = "confirmation"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderDocument(title string, fields []export.Field) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportRequest is the payload for queuing a report export.
type ExportRequest struct {
	Report       string              `json:"report" validate:"required,oneof=summary class_list confirmation"`
	Format       models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	ClassID      string              `json:"class_id"`
	EnrollmentID string              `json:"enrollment_id"`
}

// ExportService renders admission reports to files asynchronously. Jobs are
// tracked in memory only; a restart forgets unfinished jobs, and completed
// files are reclaimed by the cleanup loop.
type ExportService struct {
	reports *ReportService
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig

	mu          sync.RWMutex
	jobRegistry map[string]*models.ExportJob
}

// NewExportService constructs an ExportService. Call StartWorkers before
// accepting requests.
func NewExportService(reports *ReportService, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportService{
		reports:     reports,
		storage:     store,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		signer:      signer,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		jobRegistry: map[string]*models.ExportJob{},
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	s.queue = jobs.NewQueue("exports", s.process, queueCfg)
	return s
}

// StartWorkers launches the background workers.
func (s *ExportService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the worker pool.
func (s *ExportService) StopWorkers() {
	s.queue.Stop()
}

// Enqueue registers an export job and pushes it to the worker pool.
func (s *ExportService) Enqueue(ctx context.Context, req ExportRequest, requestedBy string) (*models.ExportJob, error) {
	switch req.Report {
	case ExportReportClassList:
		if req.ClassID == "" {
			return nil, errors.Clone(errors.ErrValidation, "class_id is required for class list exports")
		}
	case ExportReportConfirmation:
		if req.EnrollmentID == "" {
			return nil, errors.Clone(errors.ErrValidation, "enrollment_id is required for confirmation exports")
		}
	case ExportReportSummary:
	default:
		return nil, errors.Clone(errors.ErrValidation, fmt.Sprintf("unknown report %q", req.Report))
	}
	if req.Format != models.ExportFormatCSV && req.Format != models.ExportFormatPDF {
		return nil, errors.Clone(errors.ErrValidation, fmt.Sprintf("unsupported format %q", req.Format))
	}

	job := &models.ExportJob{
		ID:           uuid.NewString(),
		Report:       req.Report,
		Format:       req.Format,
		ClassID:      req.ClassID,
		EnrollmentID: req.EnrollmentID,
		Status:       models.ExportJobStatusQueued,
		RequestedBy:  requestedBy,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobRegistry[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: req.Report}); err != nil {
		s.mu.Lock()
		delete(s.jobRegistry, job.ID)
		s.mu.Unlock()
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to queue export")
	}

	s.metrics.RecordExportQueued(string(req.Format))
	s.logger.Info("export queued",
		zap.String("job_id", job.ID),
		zap.String("report", job.Report),
		zap.String("format", string(job.Format)))
	return s.snapshot(job.ID), nil
}

// Job returns the current state of an export job.
func (s *ExportService) Job(jobID string) (*models.ExportJob, error) {
	job := s.snapshot(jobID)
	if job == nil {
		return nil, errors.Clone(errors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// ParseToken validates a signed download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes export files older than ttl, defaulting to ResultTTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) process(ctx context.Context, queued jobs.Job) error {
	job := s.snapshot(queued.ID)
	if job == nil {
		return fmt.Errorf("export job %s vanished", queued.ID)
	}
	s.update(queued.ID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusRunning
	})

	payload, title, err := s.render(ctx, job)
	if err != nil {
		s.fail(queued.ID, err)
		return err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.fail(queued.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.fail(queued.ID, err)
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	downloadURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	now := time.Now().UTC()
	s.update(queued.ID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusCompleted
		j.FilePath = relPath
		j.DownloadURL = downloadURL
		j.ExpiresAt = &expiresAt
		j.CompletedAt = &now
	})
	s.logger.Info("export completed",
		zap.String("job_id", job.ID),
		zap.String("file", relPath),
		zap.String("title", title))
	return nil
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) ([]byte, string, error) {
	switch job.Report {
	case ExportReportSummary:
		report, _, err := s.reports.EnrollmentSummary(ctx)
		if err != nil {
			return nil, "", err
		}
		return s.renderDataset(summaryDataset(report), "Enrollment Summary", job.Format)
	case ExportReportClassList:
		report, _, err := s.reports.ClassList(ctx, job.ClassID)
		if err != nil {
			return nil, "", err
		}
		title := fmt.Sprintf("Class List %s %s", report.ClassName, report.Section)
		return s.renderDataset(classListDataset(report), title, job.Format)
	case ExportReportConfirmation:
		confirmation, err := s.reports.Confirmation(ctx, job.EnrollmentID)
		if err != nil {
			return nil, "", err
		}
		return s.renderConfirmation(confirmation, job.Format)
	default:
		return nil, "", fmt.Errorf("unsupported report %s", job.Report)
	}
}

func (s *ExportService) renderDataset(dataset export.Dataset, title string, format models.ExportFormat) ([]byte, string, error) {
	var payload []byte
	var err error
	switch format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	return payload, title, err
}

func (s *ExportService) renderConfirmation(confirmation *models.EnrollmentConfirmation, format models.ExportFormat) ([]byte, string, error) {
	const title = "Enrollment Confirmation"
	fields := confirmationFields(confirmation)
	if format == models.ExportFormatPDF {
		payload, err := s.pdf.RenderDocument(title, fields)
		return payload, title, err
	}
	dataset := export.Dataset{Headers: []string{"Field", "Value"}}
	for _, field := range fields {
		dataset.Rows = append(dataset.Rows, map[string]string{"Field": field.Label, "Value": field.Value})
	}
	payload, err := s.csv.Render(dataset)
	return payload, title, err
}

func summaryDataset(report *models.EnrollmentSummaryReport) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Metric", "Value"}}
	dataset.Rows = append(dataset.Rows,
		map[string]string{"Metric": "Session", "Value": report.Session},
		map[string]string{"Metric": "Total Applications", "Value": strconv.Itoa(report.TotalApplications)},
		map[string]string{"Metric": "Approved Applications", "Value": strconv.Itoa(report.ApprovedApplications)},
		map[string]string{"Metric": "Enrolled Students", "Value": strconv.Itoa(report.EnrolledStudents)},
	)
	for _, bucket := range report.ByGrade {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Metric": fmt.Sprintf("Grade %s", bucket.Grade),
			"Value":  strconv.Itoa(bucket.Count),
		})
	}
	for _, bucket := range report.ByGender {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Metric": fmt.Sprintf("Gender %s", bucket.Gender),
			"Value":  strconv.Itoa(bucket.Count),
		})
	}
	return dataset
}

func classListDataset(report *models.ClassListReport) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Student ID", "Name", "Gender", "Enrollment Date"}}
	for _, entry := range report.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":      entry.StudentID,
			"Name":            entry.Name,
			"Gender":          entry.Gender,
			"Enrollment Date": entry.EnrollmentDate.Format("2006-01-02"),
		})
	}
	return dataset
}

func confirmationFields(confirmation *models.EnrollmentConfirmation) []export.Field {
	return []export.Field{
		{Label: "Student Name", Value: confirmation.StudentName},
		{Label: "Student ID", Value: confirmation.StudentID},
		{Label: "Class", Value: confirmation.ClassName},
		{Label: "Section", Value: confirmation.Section},
		{Label: "Session", Value: confirmation.Session},
		{Label: "Enrollment Date", Value: confirmation.EnrollmentDate.Format("2006-01-02")},
		{Label: "Admission Date", Value: confirmation.AdmissionDate.Format("2006-01-02")},
	}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", job.Report, timestamp, job.Format)
}

func (s *ExportService) snapshot(jobID string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobRegistry[jobID]
	if !ok {
		return nil
	}
	clone := *job
	return &clone
}

func (s *ExportService) update(jobID string, apply func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobRegistry[jobID]; ok {
		apply(job)
	}
}

func (s *ExportService) fail(jobID string, err error) {
	s.update(jobID, func(j *models.ExportJob) {
		j.Status = models.ExportJobStatusFailed
		j.Error = err.Error()
	})
	s.logger.Error("export failed", zap.String("job_id", jobID), zap.Error(err))
}
