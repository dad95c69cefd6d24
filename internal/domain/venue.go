package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Venue represents a place of business owned by exactly one user
// Soft-deleted, never removed while reservations reference it
type Venue struct {
	VenueID                   int64
	OwnerUserID               string
	VenueName                 string
	DefaultDepositRatePercent decimal.Decimal
	Currency                  string
	Timezone                  string
	IsActive                  bool
	DeletedAt                 *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable reports whether new reservations may target this venue
func (v *Venue) IsBookable() bool {
	return v.IsActive && v.DeletedAt == nil
}

// IsOwnedBy reports whether the given user owns the venue
func (v *Venue) IsOwnedBy(userID string) bool {
	return v.OwnerUserID == userID
}

// VenueService defines a bookable service offered by a venue
// Deactivated rather than deleted to preserve historical reservation snapshots
type VenueService struct {
	ServiceID          int64
	VenueID            int64
	ServiceName        string
	Price              decimal.Decimal
	DurationMinutes    int
	Capacity           int
	DepositRatePercent *decimal.Decimal // nil = использовать ставку площадки
	IsActive           bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration returns the service duration
func (s *VenueService) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// EffectiveDepositRate возвращает ставку депозита услуги с фоллбеком на ставку площадки
func (s *VenueService) EffectiveDepositRate(venue *Venue) decimal.Decimal {
	if s.DepositRatePercent != nil {
		return *s.DepositRatePercent
	}
	return venue.DefaultDepositRatePercent
}
