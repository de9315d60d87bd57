package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments joined with student and class context.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
LEFT JOIN students s ON s.student_id = e.student_id
LEFT JOIN classes c ON c.class_id = e.class_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Session != "" {
		conditions = append(conditions, fmt.Sprintf("e.session = $%d", len(args)+1))
		args = append(args, filter.Session)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"date":         "e.date",
		"student_name": "s.name",
		"class_name":   "c.class_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "e.date"
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

	query := fmt.Sprintf(`SELECT e.enrollment_id, e.student_id, e.class_id, e.session, e.date, e.approved_by, e.status,
        s.name AS student_name, c.class_name AS class_name, c.section AS section
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// ListAll returns every enrollment for report building.
func (r *EnrollmentRepository) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	const query = `SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments ORDER BY date`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list all enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its generated identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	const query = `SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments WHERE enrollment_id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, enrollmentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (enrollment_id, student_id, class_id, session, date, approved_by, status)
        VALUES (:enrollment_id, :student_id, :class_id, :session, :date, :approved_by, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus updates the status for an enrollment.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2 WHERE enrollment_id = $1`
	if _, err := r.db.ExecContext(ctx, query, enrollmentID, status); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// ListByClass returns enrollments for a class filtered by status.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string, status models.EnrollmentStatus) ([]models.Enrollment, error) {
	const query = `SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments WHERE class_id = $1 AND status = $2 ORDER BY date`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classID, status); err != nil {
		return nil, fmt.Errorf("list class enrollments: %w", err)
	}
	return enrollments, nil
}
