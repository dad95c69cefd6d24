package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusBooked    ReservationStatus = "BOOKED"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusCanceled  ReservationStatus = "CANCELED"
	StatusNoShow    ReservationStatus = "NO_SHOW"
)

// Reservation represents a deposit-backed reservation of a venue service
type Reservation struct {
	ID             int64
	CustomerUserID string
	VenueID        int64
	ServiceID      int64
	PartySize      int
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Status         ReservationStatus

	// Снимок ценообразования, зафиксированный при создании
	// Никогда не пересчитывается из текущих данных услуги/площадки/грейда
	TotalPriceAtBooking         decimal.Decimal
	AppliedDepositRatePercent   decimal.Decimal
	AppliedGradeID              *int64
	AppliedGradeDiscountPercent decimal.Decimal
	DepositAmount               decimal.Decimal
	Currency                    string

	CanceledAt       *time.Time
	CanceledByUserID *string
	CancelReason     *string
	NoShowMarkedAt   *time.Time

	BookedAt  time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the reservation still occupies its slot
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCanceled && r.Status != StatusNoShow
}

// IsTerminal returns true if no further transition is allowed
func (r *Reservation) IsTerminal() bool {
	return r.Status != StatusBooked
}

// Overlaps reports whether the reservation interval intersects [start, end)
// Intervals are half-open: touching boundaries do not overlap
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.ScheduledStart.Before(end) && r.ScheduledEnd.After(start)
}

// BalanceAmount returns the remaining amount after the deposit
func (r *Reservation) BalanceAmount() decimal.Decimal {
	return r.TotalPriceAtBooking.Sub(r.DepositAmount)
}

// ReservationsFilter фильтр для выборки бронирований площадки
type ReservationsFilter struct {
	VenueID         int64
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли отмененные и no-show
}
