package listing

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing represents a short-term rental unit synced from the channel manager.
// The pricing core treats it as read-only; the sync collaborator owns writes.
type Listing struct {
	ID        uuid.UUID `db:"id"`
	ChannelID *string   `db:"channel_id"` // external PMS identifier

	// Basic info
	Name        string `db:"name"`
	City        string `db:"city"`
	CountryCode string `db:"country_code"`
	Area        string `db:"area"`

	// Property details
	Bedrooms       int    `db:"bedrooms_number"`
	Bathrooms      int    `db:"bathrooms_number"`
	PropertyType   string `db:"property_type"`
	PersonCapacity *int   `db:"person_capacity"`

	// Pricing constraints: PriceFloor <= Price <= PriceCeiling
	Price        decimal.Decimal `db:"price"`
	CurrencyCode string          `db:"currency_code"`
	PriceFloor   decimal.Decimal `db:"price_floor"`
	PriceCeiling decimal.Decimal `db:"price_ceiling"`

	Amenities json.RawMessage `db:"amenities"`

	SyncedAt  *time.Time `db:"synced_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// CalendarStatus represents a calendar day's availability state
type CalendarStatus string

const (
	StatusAvailable CalendarStatus = "available"
	StatusBooked    CalendarStatus = "booked"
	StatusBlocked   CalendarStatus = "blocked"
)

// Valid checks if status is valid
func (s CalendarStatus) Valid() bool {
	return s == StatusAvailable || s == StatusBooked || s == StatusBlocked
}

// CalendarDay is one date's availability, price and stay restrictions for a
// listing. There is exactly one row per (listing, date).
type CalendarDay struct {
	ID        uuid.UUID `db:"id"`
	ListingID uuid.UUID `db:"listing_id"`

	Date   time.Time       `db:"date"`
	Status CalendarStatus  `db:"status"`
	Price  decimal.Decimal `db:"price"`

	MinimumStay *int    `db:"minimum_stay"`
	MaximumStay *int    `db:"maximum_stay"`
	Notes       *string `db:"notes"`

	SyncedAt *time.Time `db:"synced_at"`
}

// IsBooked reports whether the day counts toward occupancy
func (d *CalendarDay) IsBooked() bool {
	return d.Status == StatusBooked
}
