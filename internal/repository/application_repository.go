package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// ApplicationRepository handles persistence of admission applications and
// their attached documents.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, grade,
        address, city, state, zip_code, country, parent_name, parent_email, parent_phone,
        previous_school, medical_conditions, additional_info, admission_date,
        status, submitted_at, rejection_reason, parent_id, student_id`

// List returns applications filtered by the provided criteria.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	base := `FROM applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]bool{
		"submitted_at":   true,
		"admission_date": true,
		"grade":          true,
	}
	sortBy := filter.SortBy
	if !allowedSorts[sortBy] {
		sortBy = "submitted_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", applicationColumns, base, sortBy, order, size, offset)

	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return applications, total, nil
}

// ListAll returns every application without pagination, for report building.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications ORDER BY submitted_at", applicationColumns)
	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query); err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}
	return applications, nil
}

// FindByID returns an application with its documents attached.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM applications WHERE id = $1", applicationColumns)
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	documents, err := r.ListDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	application.Documents = documents
	return &application, nil
}

// Create persists a new application record.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	const query = `INSERT INTO applications (id, first_name, last_name, email, phone, date_of_birth, gender, grade,
        address, city, state, zip_code, country, parent_name, parent_email, parent_phone,
        previous_school, medical_conditions, additional_info, admission_date,
        status, submitted_at, rejection_reason, parent_id, student_id)
        VALUES (:id, :first_name, :last_name, :email, :phone, :date_of_birth, :gender, :grade,
        :address, :city, :state, :zip_code, :country, :parent_name, :parent_email, :parent_phone,
        :previous_school, :medical_conditions, :additional_info, :admission_date,
        :status, :submitted_at, :rejection_reason, :parent_id, :student_id)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// UpdateStatus sets the status for an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}

// MarkApproved sets the approved status together with the student linkage.
// The student_id column is what later lets enrollment confirmation find its
// way back to the application.
func (r *ApplicationRepository) MarkApproved(ctx context.Context, id, studentID string) error {
	const query = `UPDATE applications SET status = $2, student_id = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ApplicationStatusApproved, studentID); err != nil {
		return fmt.Errorf("mark application approved: %w", err)
	}
	return nil
}

// MarkRejected sets the terminal rejected status with an optional reason.
func (r *ApplicationRepository) MarkRejected(ctx context.Context, id, reason string) error {
	const query = `UPDATE applications SET status = $2, rejection_reason = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ApplicationStatusRejected, reason); err != nil {
		return fmt.Errorf("mark application rejected: %w", err)
	}
	return nil
}

// UpdateStatusByStudent updates the application owning the given student.
func (r *ApplicationRepository) UpdateStatusByStudent(ctx context.Context, studentID string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2 WHERE student_id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, status); err != nil {
		return fmt.Errorf("update application status by student: %w", err)
	}
	return nil
}

// AddDocument attaches a document to an application.
func (r *ApplicationRepository) AddDocument(ctx context.Context, document *models.Document) error {
	if document.ID == "" {
		document.ID = uuid.NewString()
	}
	if document.UploadedAt.IsZero() {
		document.UploadedAt = time.Now().UTC()
	}
	if document.Status == "" {
		document.Status = models.DocumentStatusPending
	}
	const query = `INSERT INTO documents (id, application_id, name, type, url, status, uploaded_at)
        VALUES (:id, :application_id, :name, :type, :url, :status, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, document); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// ListDocuments returns the documents for an application in upload order.
func (r *ApplicationRepository) ListDocuments(ctx context.Context, applicationID string) ([]models.Document, error) {
	const query = `SELECT id, application_id, name, type, url, status, uploaded_at FROM documents WHERE application_id = $1 ORDER BY uploaded_at`
	var documents []models.Document
	if err := r.db.SelectContext(ctx, &documents, query, applicationID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// UpdateDocumentStatus sets the verification status for one document of an
// application. Returns sql.ErrNoRows when either id does not match.
func (r *ApplicationRepository) UpdateDocumentStatus(ctx context.Context, applicationID, documentID string, status models.DocumentStatus) error {
	const query = `UPDATE documents SET status = $3 WHERE id = $2 AND application_id = $1`
	result, err := r.db.ExecContext(ctx, query, applicationID, documentID, status)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SavePayment records the admission fee payment for an application.
func (r *ApplicationRepository) SavePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO payments (id, application_id, amount, currency, status, method, transaction_id, created_at)
        VALUES (:id, :application_id, :amount, :currency, :status, :method, :transaction_id, :created_at)
        ON CONFLICT (application_id) DO UPDATE SET amount = EXCLUDED.amount, currency = EXCLUDED.currency,
        status = EXCLUDED.status, method = EXCLUDED.method, transaction_id = EXCLUDED.transaction_id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

// FindPayment returns the payment for an application, or sql.ErrNoRows.
func (r *ApplicationRepository) FindPayment(ctx context.Context, applicationID string) (*models.Payment, error) {
	const query = `SELECT id, application_id, amount, currency, status, method, transaction_id, created_at FROM payments WHERE application_id = $1 LIMIT 1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, applicationID); err != nil {
		return nil, err
	}
	return &payment, nil
}
