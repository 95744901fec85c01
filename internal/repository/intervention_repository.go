package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// InterventionRepository persists intervention requests (DI). Records
// are pure inserts carrying a pre-allocated sequence number; the core
// never mutates them after creation.
type InterventionRepository interface {
	Create(ctx context.Context, di *domain.InterventionRequest) error
	GetByID(ctx context.Context, id string) (*domain.InterventionRequest, error)
	ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.InterventionRequest, error)
	List(ctx context.Context, limit, offset int) ([]domain.InterventionRequest, error)
}

type interventionRepository struct {
	db *DB
}

// NewInterventionRepository instantiates the repository.
func NewInterventionRepository(db *DB) InterventionRepository {
	return &interventionRepository{db: db}
}

func (r *interventionRepository) Create(ctx context.Context, di *domain.InterventionRequest) error {
	const query = `
        INSERT INTO intervention_requests (num_di, fault_description, requester_label, service_code, reclamation_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.querier(ctx).QueryRow(ctx, query,
		di.NumDI,
		di.FaultDescription,
		di.RequesterLabel,
		di.ServiceCode,
		di.ReclamationID,
	).Scan(&di.ID, &di.CreatedAt)
}

func (r *interventionRepository) GetByID(ctx context.Context, id string) (*domain.InterventionRequest, error) {
	const query = `
        SELECT id, num_di, fault_description, requester_label, service_code, reclamation_id, created_at
        FROM intervention_requests WHERE id=$1`
	var di domain.InterventionRequest
	if err := r.db.querier(ctx).QueryRow(ctx, query, id).Scan(
		&di.ID,
		&di.NumDI,
		&di.FaultDescription,
		&di.RequesterLabel,
		&di.ServiceCode,
		&di.ReclamationID,
		&di.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &di, nil
}

func (r *interventionRepository) ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.InterventionRequest, error) {
	const query = `
        SELECT id, num_di, fault_description, requester_label, service_code, reclamation_id, created_at
        FROM intervention_requests WHERE reclamation_id=$1 ORDER BY num_di ASC`
	rows, err := r.db.querier(ctx).Query(ctx, query, reclamationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInterventions(rows)
}

func (r *interventionRepository) List(ctx context.Context, limit, offset int) ([]domain.InterventionRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, num_di, fault_description, requester_label, service_code, reclamation_id, created_at
        FROM intervention_requests ORDER BY num_di DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.querier(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInterventions(rows)
}

func scanInterventions(rows pgx.Rows) ([]domain.InterventionRequest, error) {
	var result []domain.InterventionRequest
	for rows.Next() {
		var di domain.InterventionRequest
		if err := rows.Scan(
			&di.ID,
			&di.NumDI,
			&di.FaultDescription,
			&di.RequesterLabel,
			&di.ServiceCode,
			&di.ReclamationID,
			&di.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, di)
	}
	return result, rows.Err()
}
