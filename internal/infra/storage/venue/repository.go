package venue

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/psqlbuilder"
)

// Repository репозиторий площадок и их услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetVenueByID получает площадку по идентификатору
// Мягко удаленные площадки не возвращаются
func (r *Repository) GetVenueByID(ctx context.Context, venueID int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"venue_id",
		"owner_user_id",
		"venue_name",
		"default_deposit_rate_percent",
		"currency",
		"timezone",
		"is_active",
		"deleted_at",
		"created_at",
		"updated_at",
	).
		From("venues").
		Where(squirrel.Eq{"venue_id": venueID, "deleted_at": nil}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetVenueByID - build select query: %w", ErrBuildQuery, err)
	}

	v, err := scanVenue(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetVenueByID - scan venue: %w", ErrScanRow, err)
	}

	return v, nil
}

// GetServiceWithVenue получает услугу вместе с площадкой одним запросом
// Основной путь бронирования: отсюда берутся цена, длительность и ставки депозита
func (r *Repository) GetServiceWithVenue(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.service_id",
		"s.venue_id",
		"s.service_name",
		"s.price",
		"s.duration_minutes",
		"s.capacity",
		"s.deposit_rate_percent",
		"s.is_active",
		"s.created_at",
		"s.updated_at",
		"v.venue_id",
		"v.owner_user_id",
		"v.venue_name",
		"v.default_deposit_rate_percent",
		"v.currency",
		"v.timezone",
		"v.is_active",
		"v.deleted_at",
		"v.created_at",
		"v.updated_at",
	).
		From("venue_services s").
		Join("venues v ON v.venue_id = s.venue_id").
		Where(squirrel.Eq{"s.service_id": serviceID}).
		ToSql()

	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetServiceWithVenue - build select query: %w", ErrBuildQuery, err)
	}

	var s domain.VenueService
	var v domain.Venue
	var depositRate decimal.NullDecimal
	var sCreatedAt, sUpdatedAt, vCreatedAt, vUpdatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ServiceID,
		&s.VenueID,
		&s.ServiceName,
		&s.Price,
		&s.DurationMinutes,
		&s.Capacity,
		&depositRate,
		&s.IsActive,
		&sCreatedAt,
		&sUpdatedAt,
		&v.VenueID,
		&v.OwnerUserID,
		&v.VenueName,
		&v.DefaultDepositRatePercent,
		&v.Currency,
		&v.Timezone,
		&v.IsActive,
		&v.DeletedAt,
		&vCreatedAt,
		&vUpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: GetServiceWithVenue - scan service: %w", ErrScanRow, err)
	}

	if depositRate.Valid {
		rate := depositRate.Decimal
		s.DepositRatePercent = &rate
	}
	s.CreatedAt = sCreatedAt.Time
	s.UpdatedAt = sUpdatedAt.Time
	v.CreatedAt = vCreatedAt.Time
	v.UpdatedAt = vUpdatedAt.Time

	return &s, &v, nil
}

func scanVenue(row interface{ Scan(dest ...interface{}) error }) (*domain.Venue, error) {
	var v domain.Venue
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&v.VenueID,
		&v.OwnerUserID,
		&v.VenueName,
		&v.DefaultDepositRatePercent,
		&v.Currency,
		&v.Timezone,
		&v.IsActive,
		&v.DeletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time

	return &v, nil
}
