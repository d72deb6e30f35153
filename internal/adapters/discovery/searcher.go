package discovery

import (
	"context"

	"github.com/google/uuid"

	"oasis/internal/domain/event"
)

// SearchRequest identifies the listing and date range to discover events for
type SearchRequest struct {
	ListingID uuid.UUID
	Location  string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
}

// SearchResult is the external collaborator's raw answer
type SearchResult struct {
	Success bool             `json:"success"`
	Events  []event.RawEvent `json:"events"`
	Error   string           `json:"error,omitempty"`
}

// Searcher is the external event-discovery collaborator. Implementations may
// call a hosted service; failures surface as ErrExternalService, never as
// panics or partial results.
type Searcher interface {
	SearchEvents(ctx context.Context, req SearchRequest) (*SearchResult, error)
}
