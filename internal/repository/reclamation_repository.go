package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// ReclamationFilter captures listing parameters.
type ReclamationFilter struct {
	Statuses     []domain.ReclamationStatus
	Priorities   []domain.ReclamationPriority
	TechnicianID *int64
	SearchTerm   *string
	Limit        int
	Offset       int
}

// ReclamationRepository encapsulates reclamation persistence. It is the
// source of truth for ticket state; all status writes go through it.
type ReclamationRepository interface {
	Create(ctx context.Context, rec *domain.Reclamation) error
	GetByID(ctx context.Context, id int64) (*domain.Reclamation, error)
	// GetByIDForUpdate takes a row-level lock; callers must hold an open
	// transaction. Concurrent workflow events on the same ticket
	// serialize on this lock.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reclamation, error)
	AssignTechnician(ctx context.Context, id, technicianID int64) (*domain.Reclamation, error)
	UnassignTechnician(ctx context.Context, id int64) (*domain.Reclamation, error)
	SetStatus(ctx context.Context, id int64, status domain.ReclamationStatus, note *string) (*domain.Reclamation, error)
	ListWithFilter(ctx context.Context, filter ReclamationFilter) ([]domain.Reclamation, error)
}

type reclamationRepository struct {
	db *DB
}

// NewReclamationRepository instantiates the repository.
func NewReclamationRepository(db *DB) ReclamationRepository {
	return &reclamationRepository{db: db}
}

const reclamationColumns = `id, num_ticket, client_label, subject, description, category,
               priority, status, technician_id, opened_at, resolved_at, resolution_note,
               created_at, updated_at`

func (r *reclamationRepository) Create(ctx context.Context, rec *domain.Reclamation) error {
	const query = `
        INSERT INTO reclamations (num_ticket, client_label, subject, description, category, priority, status, opened_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
        RETURNING id, opened_at, created_at, updated_at`
	return r.db.querier(ctx).QueryRow(ctx, query,
		rec.NumTicket,
		rec.ClientLabel,
		rec.Subject,
		rec.Description,
		rec.Category,
		rec.Priority,
		rec.Status,
	).Scan(&rec.ID, &rec.OpenedAt, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *reclamationRepository) GetByID(ctx context.Context, id int64) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reclamations WHERE id=$1`, reclamationColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *reclamationRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reclamations WHERE id=$1 FOR UPDATE`, reclamationColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *reclamationRepository) AssignTechnician(ctx context.Context, id, technicianID int64) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`
        UPDATE reclamations
        SET technician_id=$2, status=$3, updated_at=NOW()
        WHERE id=$1
        RETURNING %s`, reclamationColumns)
	return r.fetchSingle(ctx, query, id, technicianID, domain.StatusInProgress)
}

func (r *reclamationRepository) UnassignTechnician(ctx context.Context, id int64) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`
        UPDATE reclamations
        SET technician_id=NULL, status=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING %s`, reclamationColumns)
	return r.fetchSingle(ctx, query, id, domain.StatusOpen)
}

// SetStatus writes the new status. The resolution timestamp is set once
// on first entry into RESOLVED or CLOSED and preserved afterwards; the
// note is only overwritten when a new one is provided.
func (r *reclamationRepository) SetStatus(ctx context.Context, id int64, status domain.ReclamationStatus, note *string) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`
        UPDATE reclamations
        SET status=$2,
            resolution_note=COALESCE($3, resolution_note),
            resolved_at=CASE WHEN $2 IN ('RESOLVED','CLOSED') THEN COALESCE(resolved_at, NOW()) ELSE NULL END,
            updated_at=NOW()
        WHERE id=$1
        RETURNING %s`, reclamationColumns)
	return r.fetchSingle(ctx, query, id, status, note)
}

func (r *reclamationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Reclamation, error) {
	var rec domain.Reclamation
	if err := r.db.querier(ctx).QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.NumTicket,
		&rec.ClientLabel,
		&rec.Subject,
		&rec.Description,
		&rec.Category,
		&rec.Priority,
		&rec.Status,
		&rec.TechnicianID,
		&rec.OpenedAt,
		&rec.ResolvedAt,
		&rec.ResolutionNote,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reclamationRepository) ListWithFilter(ctx context.Context, filter ReclamationFilter) ([]domain.Reclamation, error) {
	base := fmt.Sprintf(`SELECT %s FROM reclamations`, reclamationColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(client_label) LIKE %s OR LOWER(num_ticket) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY opened_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReclamations(rows)
}

func scanReclamations(rows pgx.Rows) ([]domain.Reclamation, error) {
	var result []domain.Reclamation
	for rows.Next() {
		var rec domain.Reclamation
		if err := rows.Scan(
			&rec.ID,
			&rec.NumTicket,
			&rec.ClientLabel,
			&rec.Subject,
			&rec.Description,
			&rec.Category,
			&rec.Priority,
			&rec.Status,
			&rec.TechnicianID,
			&rec.OpenedAt,
			&rec.ResolvedAt,
			&rec.ResolutionNote,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
