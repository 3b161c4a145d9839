package repositories

import (
	"context"
	"fmt"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/models"
)

type CircuitRepository interface {
	Create(ctx context.Context, circuit *models.Circuit) error
	GetByID(ctx context.Context, id string) (*models.Circuit, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Circuit, error)
	Update(ctx context.Context, circuit *models.Circuit) error
	Delete(ctx context.Context, id string) (bool, error)
}

type circuitRepo struct {
	db DB
}

func NewCircuitRepository(db DB) CircuitRepository {
	return &circuitRepo{db: db}
}

const circuitColumns = `id, project_id, name, data, created_at, updated_at`

// data is kept as text; the payload is never interpreted here.
func (r *circuitRepo) Create(ctx context.Context, circuit *models.Circuit) error {
	query := `
		INSERT INTO circuits (id, project_id, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, circuit.ID, circuit.ProjectID, circuit.Name, string(circuit.Data),
		circuit.CreatedAt, circuit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert circuit: %w", err)
	}
	return nil
}

func (r *circuitRepo) GetByID(ctx context.Context, id string) (*models.Circuit, error) {
	query := `SELECT ` + circuitColumns + ` FROM circuits WHERE id = $1`
	circuit, err := scanCircuit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "circuit", id)
	}
	return circuit, nil
}

func (r *circuitRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Circuit, error) {
	query := `SELECT ` + circuitColumns + ` FROM circuits WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	circuits := []*models.Circuit{}
	for rows.Next() {
		circuit, err := scanCircuit(rows)
		if err != nil {
			return nil, err
		}
		circuits = append(circuits, circuit)
	}
	return circuits, rows.Err()
}

func (r *circuitRepo) Update(ctx context.Context, circuit *models.Circuit) error {
	now := time.Now().UTC()
	query := `
		UPDATE circuits
		SET name = $1, data = $2, updated_at = $3
		WHERE id = $4
	`
	tag, err := r.db.Exec(ctx, query, circuit.Name, string(circuit.Data), now, circuit.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("circuit", circuit.ID)
	}
	circuit.UpdatedAt = &now
	return nil
}

func (r *circuitRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM circuits WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanCircuit(row rowScanner) (*models.Circuit, error) {
	circuit := &models.Circuit{}
	var data string
	if err := row.Scan(&circuit.ID, &circuit.ProjectID, &circuit.Name, &data, &circuit.CreatedAt, &circuit.UpdatedAt); err != nil {
		return nil, err
	}
	circuit.Data = []byte(data)
	return circuit, nil
}
