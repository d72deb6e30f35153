package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"oasis/internal/domain/listing"
	"oasis/pkg/errors"
)

// Compile-time check
var _ listing.Repository = (*ListingRepository)(nil)

// ListingRepository implements listing.Repository using PostgreSQL
type ListingRepository struct {
	db DBTX
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db DBTX) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `
	id, channel_id, name, city, country_code, area,
	bedrooms_number, bathrooms_number, property_type, person_capacity,
	price, currency_code, price_floor, price_ceiling,
	amenities, synced_at, created_at`

// GetByID retrieves a listing by ID
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var l listing.Listing

	query := `SELECT` + listingColumns + `
		FROM listings
		WHERE id = $1`

	err := r.db.GetContext(ctx, &l, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrap(errors.ErrNotFound, "listing not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get listing")
	}

	return &l, nil
}
