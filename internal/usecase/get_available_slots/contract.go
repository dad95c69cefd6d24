package get_available_slots

import (
	"context"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	FindOverlapping(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error)
}

// VenueRepository интерфейс репозитория площадок и услуг
type VenueRepository interface {
	GetServiceWithVenue(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error)
}

// AvailabilityCache интерфейс кеша дневной сетки слотов
type AvailabilityCache interface {
	GetDaySlots(ctx context.Context, serviceID int64, day time.Time) ([]domain.Slot, error)
	SetDaySlots(ctx context.Context, serviceID int64, day time.Time, slots []domain.Slot) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
