package services

import (
	"context"
	"fmt"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
	"circuitweb/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CircuitService interface {
	ListByProject(ctx context.Context, projectID string) ([]*models.Circuit, error)
	Get(ctx context.Context, id string) (*models.Circuit, error)
	Create(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error)
	Update(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error)
	Delete(ctx context.Context, id string) (bool, error)
	CreateFromTemplate(ctx context.Context, templateID, projectID, name string) (*models.Circuit, error)
	Templates(ctx context.Context) []models.CircuitTemplate
	Authorize(ctx context.Context, id, callerID string) (*models.Circuit, error)
}

type circuitService struct {
	repo     repositories.CircuitRepository
	projects repositories.ProjectRepository
	log      zerolog.Logger
}

func NewCircuitService(repo repositories.CircuitRepository, projects repositories.ProjectRepository, log zerolog.Logger) CircuitService {
	return &circuitService{
		repo:     repo,
		projects: projects,
		log:      log.With().Str("component", "circuits").Logger(),
	}
}

func (s *circuitService) ListByProject(ctx context.Context, projectID string) ([]*models.Circuit, error) {
	return s.repo.ListByProject(ctx, projectID)
}

func (s *circuitService) Get(ctx context.Context, id string) (*models.Circuit, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores the payload as given; a missing payload becomes {}.
func (s *circuitService) Create(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error) {
	circuit.ID = uuid.NewString()
	circuit.CreatedAt = time.Now().UTC()
	circuit.UpdatedAt = nil
	if !models.HasCircuitData(circuit.Data) {
		circuit.Data = models.EmptyCircuitData
	}

	if err := s.repo.Create(ctx, circuit); err != nil {
		return nil, err
	}
	s.log.Info().Str("circuit_id", circuit.ID).Str("project_id", circuit.ProjectID).Msg("circuit created")
	return circuit, nil
}

func (s *circuitService) Update(ctx context.Context, circuit *models.Circuit) (*models.Circuit, error) {
	existing, err := s.repo.GetByID(ctx, circuit.ID)
	if err != nil {
		return nil, err
	}

	circuit.ProjectID = existing.ProjectID
	circuit.CreatedAt = existing.CreatedAt
	if !models.HasCircuitData(circuit.Data) {
		circuit.Data = existing.Data
	}
	if err := s.repo.Update(ctx, circuit); err != nil {
		return nil, err
	}
	return circuit, nil
}

func (s *circuitService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// CreateFromTemplate does not expand templates yet: templateID is recorded in the
// log only and the circuit starts empty.
func (s *circuitService) CreateFromTemplate(ctx context.Context, templateID, projectID, name string) (*models.Circuit, error) {
	s.log.Debug().Str("template_id", templateID).Msg("template expansion not available, creating empty circuit")
	return s.Create(ctx, &models.Circuit{ProjectID: projectID, Name: name})
}

func (s *circuitService) Templates(context.Context) []models.CircuitTemplate {
	return []models.CircuitTemplate{}
}

// Authorize resolves ownership through the circuit's project.
func (s *circuitService) Authorize(ctx context.Context, id, callerID string) (*models.Circuit, error) {
	circuit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, circuit.ProjectID)
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: circuit %s has no project", common.ErrForbidden, id)
	}
	if err != nil {
		return nil, err
	}
	if !project.OwnedBy(callerID) {
		return nil, fmt.Errorf("%w: circuit %s is not owned by %s", common.ErrForbidden, id, callerID)
	}
	return circuit, nil
}
