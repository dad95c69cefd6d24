package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/psqlbuilder"
)

const (
	pgUniqueViolation = "23505"

	// Частичный уникальный индекс: не более одного CAPTURED DEPOSIT на бронирование
	capturedDepositIndex = "uq_payments_captured_deposit"
)

var paymentColumns = []string{
	"payment_id",
	"reservation_id",
	"payer_user_id",
	"payment_type",
	"status",
	"method",
	"provider",
	"provider_txn_id",
	"amount",
	"currency",
	"related_payment_id",
	"paid_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий платежной книги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create записывает платеж в книгу
// Попытка записать второй захваченный депозит по одному бронированию
// возвращает ErrDepositAlreadyCaptured (идемпотентность депозита)
func (r *Repository) Create(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"reservation_id",
			"payer_user_id",
			"payment_type",
			"status",
			"method",
			"provider",
			"provider_txn_id",
			"amount",
			"currency",
			"related_payment_id",
			"paid_at",
		).
		Values(
			p.ReservationID,
			p.PayerUserID,
			p.PaymentType,
			p.Status,
			p.Method,
			p.Provider,
			p.ProviderTxnID,
			p.Amount,
			p.Currency,
			p.RelatedPaymentID,
			p.PaidAt,
		).
		Suffix("RETURNING payment_id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation && pqErr.Constraint == capturedDepositIndex {
			return nil, ErrDepositAlreadyCaptured
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

// GetCapturedDeposit получает захваченный депозит бронирования
// Внутри транзакции строка блокируется (FOR UPDATE), чтобы проверка
// перед записью баланса или возврата выполнялась над актуальным состоянием
func (r *Repository) GetCapturedDeposit(ctx context.Context, reservationID int64) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{
			"reservation_id": reservationID,
			"payment_type":   domain.PaymentTypeDeposit,
			"status":         domain.PaymentStatusCaptured,
		})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetCapturedDeposit - build select query: %w", ErrBuildQuery, err)
	}

	p, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetCapturedDeposit - scan payment: %w", ErrScanRow, err)
	}

	return p, nil
}

// GetByReservation получает все платежи бронирования в порядке создания
func (r *Repository) GetByReservation(ctx context.Context, reservationID int64) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("payment_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByReservation - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByReservation - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// GetByPayer получает историю платежей пользователя с пагинацией
func (r *Repository) GetByPayer(ctx context.Context, payerID string, limit, offset uint64) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"payer_user_id": payerID}).
		OrderBy("created_at DESC, payment_id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByPayer - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPayer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanPayments(rows)
}

// CountByPayer возвращает общее число платежей пользователя для пагинации
func (r *Repository) CountByPayer(ctx context.Context, payerID string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("payments").
		Where(squirrel.Eq{"payer_user_id": payerID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByPayer - build select query: %w", ErrBuildQuery, err)
	}

	var count int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByPayer - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.ReservationID,
		&p.PayerUserID,
		&p.PaymentType,
		&p.Status,
		&p.Method,
		&p.Provider,
		&p.ProviderTxnID,
		&p.Amount,
		&p.Currency,
		&p.RelatedPaymentID,
		&p.PaidAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

func scanPayments(rows *sql.Rows) ([]*domain.Payment, error) {
	payments := make([]*domain.Payment, 0)

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanPayments - scan row: %w", ErrScanRow, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanPayments - rows error: %w", ErrScanRow, err)
	}

	return payments, nil
}
