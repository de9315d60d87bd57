package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/eduportal-api/internal/models"
	appErrors "github.com/noah-isme/eduportal-api/pkg/errors"
)

type classRepo interface {
	ListAll(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, classID string) (*models.Class, error)
}

// ClassService exposes the static class reference data. Classes are seeded
// configuration, never written by the workflow.
type ClassService struct {
	repo   classRepo
	logger *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepo, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, logger: logger}
}

// List returns every known class.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, classID string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}
