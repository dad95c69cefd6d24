package reservations

import (
	"context"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByCustomer(ctx context.Context, customerID string, status *domain.ReservationStatus, limit, offset uint64) ([]*domain.Reservation, error)
	CountByCustomer(ctx context.Context, customerID string, status *domain.ReservationStatus) (int64, error)
	GetByVenueWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error)
	Cancel(ctx context.Context, id int64, canceledBy string, reason *string) error
	MarkNoShow(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetCapturedDeposit(ctx context.Context, reservationID int64) (*domain.Payment, error)
	GetByReservation(ctx context.Context, reservationID int64) ([]*domain.Payment, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	IncrementNoShowCount(ctx context.Context, userID string) error
	IncrementSuccessCount(ctx context.Context, userID string) error
}

// VenueRepository интерфейс репозитория площадок
type VenueRepository interface {
	GetVenueByID(ctx context.Context, venueID int64) (*domain.Venue, error)
}

// AvailabilityCache интерфейс кеша дневной сетки слотов
type AvailabilityCache interface {
	InvalidateDay(ctx context.Context, serviceID int64, day time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
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
