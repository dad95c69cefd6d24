package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/psqlbuilder"
)

const (
	// Код ошибки PostgreSQL: нарушение уникального ограничения
	pgUniqueViolation = "23505"

	// Частичный уникальный индекс по (service_id, scheduled_start) для активных бронирований —
	// авторитетная защита эксклюзивности слота
	slotUniqueIndex = "uq_reservations_service_slot"
)

var reservationColumns = []string{
	"reservation_id",
	"customer_user_id",
	"venue_id",
	"service_id",
	"party_size",
	"scheduled_start",
	"scheduled_end",
	"status",
	"total_price_at_booking",
	"applied_deposit_rate_percent",
	"applied_grade_id",
	"applied_grade_discount_percent",
	"deposit_amount",
	"currency",
	"canceled_at",
	"canceled_by_user_id",
	"cancel_reason",
	"no_show_marked_at",
	"booked_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование со снимком ценообразования
// Нарушение уникальности слота возвращается как ErrSlotTaken — это рабочий исход
// при конкурентных запросах на один и тот же слот, а не внутренняя ошибка
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"customer_user_id",
			"venue_id",
			"service_id",
			"party_size",
			"scheduled_start",
			"scheduled_end",
			"status",
			"total_price_at_booking",
			"applied_deposit_rate_percent",
			"applied_grade_id",
			"applied_grade_discount_percent",
			"deposit_amount",
			"currency",
		).
		Values(
			res.CustomerUserID,
			res.VenueID,
			res.ServiceID,
			res.PartySize,
			res.ScheduledStart,
			res.ScheduledEnd,
			res.Status,
			res.TotalPriceAtBooking,
			res.AppliedDepositRatePercent,
			res.AppliedGradeID,
			res.AppliedGradeDiscountPercent,
			res.DepositAmount,
			res.Currency,
		).
		Suffix("RETURNING reservation_id, booked_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var bookedAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&bookedAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == slotUniqueIndex {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.BookedAt = bookedAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы переход статуса
// выполнялся над актуальным состоянием
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"reservation_id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// FindOverlapping получает активные бронирования услуги, пересекающиеся с интервалом [start, end)
// Полуоткрытые интервалы: касание границ пересечением не считается
// Внутри транзакции найденные строки блокируются (FOR UPDATE)
func (r *Repository) FindOverlapping(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"service_id": serviceID}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings()}).
		Where(squirrel.Lt{"scheduled_start": end}).
		Where(squirrel.Gt{"scheduled_end": start}).
		OrderBy("scheduled_start ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// GetByCustomer получает историю бронирований клиента с пагинацией
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomer(ctx context.Context, customerID string, status *domain.ReservationStatus, limit, offset uint64) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"customer_user_id": customerID}).
		OrderBy("scheduled_start DESC").
		Limit(limit).
		Offset(offset)

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// CountByCustomer возвращает общее число бронирований клиента для пагинации
func (r *Repository) CountByCustomer(ctx context.Context, customerID string, status *domain.ReservationStatus) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COUNT(*)").
		From("reservations").
		Where(squirrel.Eq{"customer_user_id": customerID})

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountByCustomer - build select query: %w", ErrBuildQuery, err)
	}

	var count int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByCustomer - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// GetByVenueWithFilter получает бронирования площадки с фильтрацией
// по периоду, статусу и включению неактивных бронирований
func (r *Repository) GetByVenueWithFilter(ctx context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"venue_id": filter.VenueID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"scheduled_start": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"scheduled_start": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings()})
	}

	selectBuilder = selectBuilder.OrderBy("scheduled_start DESC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueWithFilter - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByVenueWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// Cancel переводит бронирование в CANCELED с фиксацией, кто и почему отменил
// Условие status = 'BOOKED' в WHERE — защита от потерянной гонки: проигравший
// конкурентный переход получит 0 строк
func (r *Repository) Cancel(ctx context.Context, id int64, canceledBy string, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCanceled).
		Set("canceled_at", squirrel.Expr("NOW()")).
		Set("canceled_by_user_id", canceledBy).
		Set("cancel_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"reservation_id": id}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, "Cancel", query, args)
}

// MarkNoShow переводит бронирование в NO_SHOW с фиксацией времени отметки
func (r *Repository) MarkNoShow(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusNoShow).
		Set("no_show_marked_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"reservation_id": id}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkNoShow - build update query: %w", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, "MarkNoShow", query, args)
}

// Complete переводит бронирование в COMPLETED
func (r *Repository) Complete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"reservation_id": id}).
		Where(squirrel.Eq{"status": domain.StatusBooked}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Complete - build update query: %w", ErrBuildQuery, err)
	}

	return r.execGuarded(ctx, executor, "Complete", query, args)
}

// execGuarded выполняет guarded update; 0 затронутых строк означает,
// что бронирование отсутствует либо уже покинуло статус BOOKED
func (r *Repository) execGuarded(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var bookedAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.CustomerUserID,
		&res.VenueID,
		&res.ServiceID,
		&res.PartySize,
		&res.ScheduledStart,
		&res.ScheduledEnd,
		&res.Status,
		&res.TotalPriceAtBooking,
		&res.AppliedDepositRatePercent,
		&res.AppliedGradeID,
		&res.AppliedGradeDiscountPercent,
		&res.DepositAmount,
		&res.Currency,
		&res.CanceledAt,
		&res.CanceledByUserID,
		&res.CancelReason,
		&res.NoShowMarkedAt,
		&bookedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.BookedAt = bookedAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

func inactiveStatusStrings() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
