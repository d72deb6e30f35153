package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"oasis/internal/domain/proposal"
	"oasis/pkg/errors"
)

// Compile-time check
var _ proposal.Repository = (*ProposalRepository)(nil)

// ProposalRepository implements proposal.Repository using PostgreSQL
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository creates a new proposal repository
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `
	id, listing_id, date_range_start, date_range_end,
	current_price, proposed_price, change_pct,
	risk_level, status, reasoning, signals,
	executed_at, created_at`

// CreateBatch persists proposals all-or-nothing in one transaction.
// A failed write rolls back every proposal of the call.
func (r *ProposalRepository) CreateBatch(ctx context.Context, proposals []*proposal.Proposal) error {
	if len(proposals) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO proposals (
			id, listing_id, date_range_start, date_range_end,
			current_price, proposed_price, change_pct,
			risk_level, status, reasoning, signals,
			executed_at, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10, $11,
			$12, $13
		)`

	for _, p := range proposals {
		_, err := tx.ExecContext(ctx, query,
			p.ID, p.ListingID, p.DateRangeStart, p.DateRangeEnd,
			p.CurrentPrice, p.ProposedPrice, p.ChangePct,
			p.RiskLevel, p.Status, p.Reasoning, p.Signals,
			p.ExecutedAt, p.CreatedAt,
		)
		if err != nil {
			return errors.Wrapf(errors.ErrPersistence, "failed to create proposal for %s: %v", p.ListingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to commit proposals")
	}

	return nil
}

// GetByID retrieves a proposal by ID
func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	var p proposal.Proposal

	query := `SELECT` + proposalColumns + `
		FROM proposals
		WHERE id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "proposal not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proposal")
	}

	return &p, nil
}

// GetByListing retrieves proposals for a listing, newest first
func (r *ProposalRepository) GetByListing(ctx context.Context, listingID uuid.UUID, status proposal.Status) ([]*proposal.Proposal, error) {
	var proposals []*proposal.Proposal

	query := `SELECT` + proposalColumns + `
		FROM proposals
		WHERE listing_id = $1`
	args := []interface{}{listingID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &proposals, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proposals")
	}

	return proposals, nil
}

// Update persists a proposal's status and execution timestamp
func (r *ProposalRepository) Update(ctx context.Context, p *proposal.Proposal) error {
	query := `
		UPDATE proposals
		SET status = $2,
			executed_at = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, p.ID, p.Status, p.ExecutedAt)
	if err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to update proposal")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return errors.Wrap(errors.ErrNotFound, "proposal not found")
	}

	return nil
}
