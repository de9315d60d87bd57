package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/models"
)

func newApplicationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var applicationTestColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "date_of_birth", "gender", "grade",
	"address", "city", "state", "zip_code", "country", "parent_name", "parent_email", "parent_phone",
	"previous_school", "medical_conditions", "additional_info", "admission_date",
	"status", "submitted_at", "rejection_reason", "parent_id", "student_id",
}

func applicationTestRow() []driver.Value {
	now := time.Now()
	return []driver.Value{
		"app_1", "Ada", "Okafor", "ada@example.com", "+1 555", now, "female", "Grade 5",
		"12 Main St", "Lagos", "LA", "12345", "Nigeria", "Ngozi", "ngozi@example.com", "+1 556",
		"", "", "", now,
		"submitted", now, nil, nil, nil,
	}
}

func TestApplicationRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("(?s)SELECT .+ FROM applications WHERE id = \\$1").
		WithArgs("app_1").
		WillReturnRows(sqlmock.NewRows(applicationTestColumns).AddRow(applicationTestRow()...))
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE application_id = \\$1").
		WithArgs("app_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "type", "url", "status", "uploaded_at"}).
			AddRow("doc_1", "app_1", "birth.pdf", "birth_certificate", "https://files/birth.pdf", "pending", time.Now()))

	application, err := repo.FindByID(context.Background(), "app_1")
	require.NoError(t, err)
	assert.Equal(t, "app_1", application.ID)
	require.Len(t, application.Documents, 1)
	assert.Equal(t, models.DocumentStatusPending, application.Documents[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("(?s)SELECT .+ FROM applications WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("(?s)SELECT .+ FROM applications WHERE 1=1 AND status = \\$1 ORDER BY submitted_at DESC LIMIT 20 OFFSET 0").
		WithArgs(models.ApplicationStatusSubmitted).
		WillReturnRows(sqlmock.NewRows(applicationTestColumns).AddRow(applicationTestRow()...))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM applications WHERE 1=1 AND status = \\$1").
		WithArgs(models.ApplicationStatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	applications, total, err := repo.List(context.Background(), models.ApplicationFilter{Status: models.ApplicationStatusSubmitted})
	require.NoError(t, err)
	assert.Len(t, applications, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryMarkApproved(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status = \\$2, student_id = \\$3 WHERE id = \\$1").
		WithArgs("app_1", models.ApplicationStatusApproved, "STU600000XYZ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkApproved(context.Background(), "app_1", "STU600000XYZ"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryMarkRejected(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status = \\$2, rejection_reason = \\$3 WHERE id = \\$1").
		WithArgs("app_1", models.ApplicationStatusRejected, "incomplete records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRejected(context.Background(), "app_1", "incomplete records"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateDocumentStatus(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE documents SET status = \\$3 WHERE id = \\$2 AND application_id = \\$1").
		WithArgs("app_1", "doc_1", models.DocumentStatusVerified).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateDocumentStatus(context.Background(), "app_1", "doc_1", models.DocumentStatusVerified))

	// No matching row maps to sql.ErrNoRows for the service layer.
	mock.ExpectExec("UPDATE documents SET status = \\$3 WHERE id = \\$2 AND application_id = \\$1").
		WithArgs("app_1", "missing", models.DocumentStatusVerified).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateDocumentStatus(context.Background(), "app_1", "missing", models.DocumentStatusVerified)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryAddDocument(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	document := &models.Document{ApplicationID: "app_1", Name: "birth.pdf", Type: models.DocumentTypeBirthCertificate, URL: "https://files/birth.pdf"}
	require.NoError(t, repo.AddDocument(context.Background(), document))
	assert.NotEmpty(t, document.ID)
	assert.Equal(t, models.DocumentStatusPending, document.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositorySavePayment(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{ApplicationID: "app_1", Amount: 150, Currency: "USD", Status: models.PaymentStatusCompleted, Method: models.PaymentMethodStripe}
	require.NoError(t, repo.SavePayment(context.Background(), payment))
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
