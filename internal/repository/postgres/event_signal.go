package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"oasis/internal/domain/event"
	"oasis/pkg/errors"
)

// Compile-time check
var _ event.Repository = (*EventSignalRepository)(nil)

// EventSignalRepository implements event.Repository using PostgreSQL
type EventSignalRepository struct {
	db *sqlx.DB
}

// NewEventSignalRepository creates a new event signal repository
func NewEventSignalRepository(db *sqlx.DB) *EventSignalRepository {
	return &EventSignalRepository{db: db}
}

// GetByLocationAndRange retrieves signals overlapping [start, end] inclusive.
// Overlap predicate: signal.start_date <= end AND signal.end_date >= start.
func (r *EventSignalRepository) GetByLocationAndRange(ctx context.Context, location string, start, end time.Time) ([]*event.Signal, error) {
	var signals []*event.Signal

	query := `
		SELECT id, name, start_date, end_date, location,
			   expected_impact, confidence, description, source,
			   suggested_premium_pct, fetched_at
		FROM event_signals
		WHERE location = $1 AND start_date <= $2 AND end_date >= $3
		ORDER BY start_date`

	err := r.db.SelectContext(ctx, &signals, query, location, end, start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get event signals")
	}

	return signals, nil
}

// SaveBatch persists signals in one transaction. A unique index on
// (name, start_date, end_date, location) plus ON CONFLICT DO NOTHING makes
// concurrent fills of the same range idempotent.
func (r *EventSignalRepository) SaveBatch(ctx context.Context, signals []*event.Signal) (int, error) {
	if len(signals) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(errors.ErrPersistence, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO event_signals (
			id, name, start_date, end_date, location,
			expected_impact, confidence, description, source,
			suggested_premium_pct, fetched_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11
		)
		ON CONFLICT (name, start_date, end_date, location) DO NOTHING`

	saved := 0
	for _, s := range signals {
		result, err := tx.ExecContext(ctx, query,
			s.ID, s.Name, s.StartDate, s.EndDate, s.Location,
			s.ExpectedImpact, s.Confidence, s.Description, s.Source,
			s.SuggestedPremiumPct, s.FetchedAt,
		)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrPersistence, "failed to save event signal %q: %v", s.Name, err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "failed to get rows affected")
		}
		saved += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(errors.ErrPersistence, "failed to commit event signals")
	}

	return saved, nil
}
