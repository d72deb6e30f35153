package event

import (
	"context"
	"time"
)

// Repository defines operations for the event-signal cache
type Repository interface {
	// GetByLocationAndRange retrieves signals for a location whose date range
	// overlaps [start, end] inclusive, ordered by start date
	GetByLocationAndRange(ctx context.Context, location string, start, end time.Time) ([]*Signal, error)

	// SaveBatch persists signals in one batch. Duplicate
	// (name, start_date, end_date, location) rows are ignored so cache fill
	// stays idempotent under concurrent requests. Returns the number saved.
	SaveBatch(ctx context.Context, signals []*Signal) (int, error)
}
