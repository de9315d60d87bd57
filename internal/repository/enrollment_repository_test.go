package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduportal-api/internal/models"
)

func newEnrollmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var enrollmentTestColumns = []string{"enrollment_id", "student_id", "class_id", "session", "date", "approved_by", "status"}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "class_id", "session", "date", "approved_by", "status", "student_name", "class_name", "section"}).
		AddRow("ENR1", "STU1", "class-5", "2024-2025", time.Now(), nil, "pending", "Ada Okafor", "Grade 5", "A")
	mock.ExpectQuery(`(?s)SELECT e\.enrollment_id, .+ FROM enrollments e.+WHERE e\.status = \$1 ORDER BY e\.date DESC LIMIT 20 OFFSET 0`).
		WithArgs(models.EnrollmentStatusPending).
		WillReturnRows(rows)
	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM enrollments e.+WHERE e\.status = \$1`).
		WithArgs(models.EnrollmentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	enrollments, total, err := repo.List(context.Background(), models.EnrollmentFilter{Status: models.EnrollmentStatusPending})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Ada Okafor", enrollments[0].StudentName)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments WHERE enrollment_id = \$1`).
		WithArgs("ENR1").
		WillReturnRows(sqlmock.NewRows(enrollmentTestColumns).
			AddRow("ENR1", "STU1", "class-5", "2024-2025", time.Now(), "user-1", "pending"))

	enrollment, err := repo.FindByID(context.Background(), "ENR1")
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusPending, enrollment.Status)
	require.NotNil(t, enrollment.ApprovedBy)
	assert.Equal(t, "user-1", *enrollment.ApprovedBy)

	mock.ExpectQuery(`SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments WHERE enrollment_id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	enrollment := &models.Enrollment{
		EnrollmentID: "ENR1",
		StudentID:    "STU1",
		ClassID:      "class-5",
		Session:      "2024-2025",
		Date:         time.Now(),
		Status:       models.EnrollmentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(`UPDATE enrollments SET status = \$2 WHERE enrollment_id = \$1`).
		WithArgs("ENR1", models.EnrollmentStatusEnrolled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "ENR1", models.EnrollmentStatusEnrolled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(`SELECT enrollment_id, student_id, class_id, session, date, approved_by, status FROM enrollments WHERE class_id = \$1 AND status = \$2 ORDER BY date`).
		WithArgs("class-5", models.EnrollmentStatusEnrolled).
		WillReturnRows(sqlmock.NewRows(enrollmentTestColumns).
			AddRow("ENR1", "STU1", "class-5", "2024-2025", time.Now(), nil, "enrolled"))

	enrollments, err := repo.ListByClass(context.Background(), "class-5", models.EnrollmentStatusEnrolled)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollments[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
