package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
	"circuitweb/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ProjectService interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
	Duplicate(ctx context.Context, id, newName string) (*models.Project, error)
	Authorize(ctx context.Context, id, callerID string) (*models.Project, error)
}

type projectService struct {
	repo repositories.ProjectRepository
	log  zerolog.Logger
}

func NewProjectService(repo repositories.ProjectRepository, log zerolog.Logger) ProjectService {
	return &projectService{repo: repo, log: log.With().Str("component", "projects").Logger()}
}

func (s *projectService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *projectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Create assigns a new id and creation time; UpdatedAt stays nil.
func (s *projectService) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	project.ID = uuid.NewString()
	project.CreatedAt = time.Now().UTC()
	project.UpdatedAt = nil

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.log.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerID).Msg("project created")
	return project, nil
}

func (s *projectService) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	existing, err := s.repo.GetByID(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	// id, owner and creation time are immutable
	project.OwnerID = existing.OwnerID
	project.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Str("project_id", id).Msg("project deleted")
	}
	return deleted, nil
}

// Duplicate copies name-independent fields of a project. Circuits are not copied.
func (s *projectService) Duplicate(ctx context.Context, id, newName string) (*models.Project, error) {
	original, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, &models.Project{
		Name:        newName,
		Description: original.Description,
		OwnerID:     original.OwnerID,
	})
}

// Authorize loads a project and checks that callerID owns it.
func (s *projectService) Authorize(ctx context.Context, id, callerID string) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.OwnedBy(callerID) {
		return nil, fmt.Errorf("%w: project %s is not owned by %s", common.ErrForbidden, id, callerID)
	}
	return project, nil
}

// isNotFound is shared by the services that treat a missing row as a branch.
func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
