package create_reservation

import (
	"context"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	FindOverlapping(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error)
}

// VenueRepository интерфейс репозитория площадок и услуг
type VenueRepository interface {
	GetServiceWithVenue(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// AvailabilityCache интерфейс кеша дневной сетки слотов
type AvailabilityCache interface {
	InvalidateDay(ctx context.Context, serviceID int64, day time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
