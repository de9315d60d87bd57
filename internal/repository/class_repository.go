package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/eduportal-api/internal/models"
)

// ClassRepository reads the static class reference data. The workflow never
// creates or destroys classes; they are seeded out of band.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListAll returns every class.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT class_id, class_name, section, teacher_id FROM classes ORDER BY class_name, section`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, classID string) (*models.Class, error) {
	const query = `SELECT class_id, class_name, section, teacher_id FROM classes WHERE class_id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, classID); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByName resolves a class whose class_name equals the grade label
// exactly. A miss signals a configuration gap, not an error; callers get
// sql.ErrNoRows and decide how to degrade.
func (r *ClassRepository) FindByName(ctx context.Context, className string) (*models.Class, error) {
	const query = `SELECT class_id, class_name, section, teacher_id FROM classes WHERE class_name = $1 LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, className); err != nil {
		return nil, err
	}
	return &class, nil
}
