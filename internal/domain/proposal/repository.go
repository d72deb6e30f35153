package proposal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines operations for proposal persistence
type Repository interface {
	// CreateBatch persists proposals all-or-nothing in one transaction
	CreateBatch(ctx context.Context, proposals []*Proposal) error

	// GetByID retrieves a proposal by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Proposal, error)

	// GetByListing retrieves proposals for a listing, newest first,
	// optionally filtered by status (empty status means all)
	GetByListing(ctx context.Context, listingID uuid.UUID, status Status) ([]*Proposal, error)

	// Update persists a proposal's current state (status transitions)
	Update(ctx context.Context, p *Proposal) error
}
