package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// WorkOrderRepository persists work orders (BT). A work order is created
// in progress and closed exactly once; closure is terminal.
type WorkOrderRepository interface {
	Create(ctx context.Context, bt *domain.WorkOrder) error
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	// GetByIDForUpdate takes a row-level lock; callers must hold an open
	// transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error)
	Close(ctx context.Context, id string, result *string) (*domain.WorkOrder, error)
	List(ctx context.Context, limit, offset int) ([]domain.WorkOrder, error)
	CountOpenByReclamation(ctx context.Context, reclamationID int64) (int64, error)
}

type workOrderRepository struct {
	db *DB
}

// NewWorkOrderRepository instantiates the repository.
func NewWorkOrderRepository(db *DB) WorkOrderRepository {
	return &workOrderRepository{db: db}
}

const workOrderColumns = `id, num_bt, intervention_id, num_di, technician_id, fault_description,
               in_progress, closed, result, created_at, closed_at`

func (r *workOrderRepository) Create(ctx context.Context, bt *domain.WorkOrder) error {
	const query = `
        INSERT INTO work_orders (num_bt, intervention_id, num_di, technician_id, fault_description, in_progress, closed)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.querier(ctx).QueryRow(ctx, query,
		bt.NumBT,
		bt.InterventionID,
		bt.NumDI,
		bt.TechnicianID,
		bt.FaultDescription,
		bt.InProgress,
		bt.Closed,
	).Scan(&bt.ID, &bt.CreatedAt)
}

func (r *workOrderRepository) GetByID(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return r.fetchSingle(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id=$1`, id)
}

func (r *workOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.WorkOrder, error) {
	return r.fetchSingle(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id=$1 FOR UPDATE`, id)
}

// Close flips the flags atomically. The closed=false guard makes a
// double close report no rows instead of silently rewriting the record.
func (r *workOrderRepository) Close(ctx context.Context, id string, result *string) (*domain.WorkOrder, error) {
	const query = `
        UPDATE work_orders
        SET closed=TRUE, in_progress=FALSE, result=COALESCE($2, result), closed_at=NOW()
        WHERE id=$1 AND closed=FALSE
        RETURNING ` + workOrderColumns
	return r.fetchSingle(ctx, query, id, result)
}

func (r *workOrderRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.WorkOrder, error) {
	var bt domain.WorkOrder
	if err := r.db.querier(ctx).QueryRow(ctx, query, args...).Scan(
		&bt.ID,
		&bt.NumBT,
		&bt.InterventionID,
		&bt.NumDI,
		&bt.TechnicianID,
		&bt.FaultDescription,
		&bt.InProgress,
		&bt.Closed,
		&bt.Result,
		&bt.CreatedAt,
		&bt.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &bt, nil
}

func (r *workOrderRepository) List(ctx context.Context, limit, offset int) ([]domain.WorkOrder, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + workOrderColumns + ` FROM work_orders ORDER BY num_bt DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.querier(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkOrders(rows)
}

// CountOpenByReclamation counts still-open work orders linked to a
// reclamation through their intervention request.
func (r *workOrderRepository) CountOpenByReclamation(ctx context.Context, reclamationID int64) (int64, error) {
	const query = `
        SELECT COUNT(*)
        FROM work_orders wo
        JOIN intervention_requests di ON di.id = wo.intervention_id
        WHERE di.reclamation_id=$1 AND wo.closed=FALSE`
	var count int64
	if err := r.db.querier(ctx).QueryRow(ctx, query, reclamationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanWorkOrders(rows pgx.Rows) ([]domain.WorkOrder, error) {
	var result []domain.WorkOrder
	for rows.Next() {
		var bt domain.WorkOrder
		if err := rows.Scan(
			&bt.ID,
			&bt.NumBT,
			&bt.InterventionID,
			&bt.NumDI,
			&bt.TechnicianID,
			&bt.FaultDescription,
			&bt.InProgress,
			&bt.Closed,
			&bt.Result,
			&bt.CreatedAt,
			&bt.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, bt)
	}
	return result, rows.Err()
}
