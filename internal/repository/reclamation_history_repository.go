package repository

import (
	"context"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// ReclamationHistoryRepository stores audit entries.
type ReclamationHistoryRepository interface {
	Create(ctx context.Context, history *domain.ReclamationHistory) error
	ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.ReclamationHistory, error)
}

type reclamationHistoryRepository struct {
	db *DB
}

// NewReclamationHistoryRepository builds the repository.
func NewReclamationHistoryRepository(db *DB) ReclamationHistoryRepository {
	return &reclamationHistoryRepository{db: db}
}

func (r *reclamationHistoryRepository) Create(ctx context.Context, history *domain.ReclamationHistory) error {
	const query = `
        INSERT INTO reclamation_history (reclamation_id, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.querier(ctx).QueryRow(ctx, query,
		history.ReclamationID,
		history.ChangedByID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *reclamationHistoryRepository) ListByReclamation(ctx context.Context, reclamationID int64) ([]domain.ReclamationHistory, error) {
	const query = `
        SELECT id, reclamation_id, changed_by_id, change_type, old_value, new_value, created_at
        FROM reclamation_history WHERE reclamation_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.querier(ctx).Query(ctx, query, reclamationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReclamationHistory
	for rows.Next() {
		var history domain.ReclamationHistory
		if err := rows.Scan(
			&history.ID,
			&history.ReclamationID,
			&history.ChangedByID,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
