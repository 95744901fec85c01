package repository

import (
	"context"

	apperrors "github.com/sav-suite/reclamation-service/pkg/util"
)

// Series names used by the workflow.
const (
	SeriesReclamation  = "REC"
	SeriesIntervention = "DI"
	SeriesWorkOrder    = "BT"
)

// SequenceAllocator issues the next monotonic integer for a named series.
// Values are strictly increasing and collision-free under concurrent
// callers; gaps are possible when a surrounding transaction rolls back.
type SequenceAllocator interface {
	NextValue(ctx context.Context, series string) (int64, error)
}

type sequenceAllocator struct {
	db *DB
}

// NewSequenceAllocator builds a counter-row backed allocator.
func NewSequenceAllocator(db *DB) SequenceAllocator {
	return &sequenceAllocator{db: db}
}

// NextValue increments the counter row for the series and returns the
// new value. The upsert takes a row-level lock, so two concurrent
// allocations serialize instead of reading the same value. Called inside
// the same transaction as the insert it numbers, the increment rolls
// back together with that insert.
func (a *sequenceAllocator) NextValue(ctx context.Context, series string) (int64, error) {
	const query = `
        INSERT INTO sequence_counters (series, value) VALUES ($1, 1)
        ON CONFLICT (series) DO UPDATE SET value = sequence_counters.value + 1
        RETURNING value`

	var value int64
	if err := a.db.querier(ctx).QueryRow(ctx, query, series).Scan(&value); err != nil {
		return 0, apperrors.NewAllocationError(series, err)
	}
	return value, nil
}
