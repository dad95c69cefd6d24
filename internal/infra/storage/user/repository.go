package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
	"github.com/noshow-me/NSP-ReservationService/pkg/psqlbuilder"
)

// Repository репозиторий пользователей и грейдов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает пользователя вместе с его текущим грейдом
// LEFT JOIN: висячий grade_id не роняет запрос, Grade остается nil
func (r *Repository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"u.user_id",
		"u.email",
		"u.real_name",
		"u.roles",
		"u.is_active",
		"u.grade_id",
		"u.no_show_count",
		"u.success_count",
		"u.deleted_at",
		"u.created_at",
		"u.updated_at",
		"g.grade_id",
		"g.grade_name",
		"g.grade_code",
		"g.deposit_discount_percent",
		"g.max_no_show_rate",
		"g.require_no_show_zero",
		"g.is_default",
		"g.priority",
		"g.created_at",
		"g.updated_at",
	).
		From("users u").
		LeftJoin("user_grades g ON g.grade_id = u.grade_id").
		Where(squirrel.Eq{"u.user_id": userID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF u")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var u domain.User
	var roles pq.StringArray
	var createdAt, updatedAt sql.NullTime

	var gradeID sql.NullInt64
	var gradeName, gradeCode sql.NullString
	var discountPercent, maxNoShowRate decimal.NullDecimal
	var requireNoShowZero, isDefault sql.NullBool
	var priority sql.NullInt64
	var gradeCreatedAt, gradeUpdatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&u.UserID,
		&u.Email,
		&u.RealName,
		&roles,
		&u.IsActive,
		&u.GradeID,
		&u.NoShowCount,
		&u.SuccessCount,
		&u.DeletedAt,
		&createdAt,
		&updatedAt,
		&gradeID,
		&gradeName,
		&gradeCode,
		&discountPercent,
		&maxNoShowRate,
		&requireNoShowZero,
		&isDefault,
		&priority,
		&gradeCreatedAt,
		&gradeUpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan user: %w", ErrScanRow, err)
	}

	u.Roles = make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		u.Roles = append(u.Roles, domain.Role(role))
	}
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time

	if gradeID.Valid {
		grade := &domain.UserGrade{
			GradeID:                gradeID.Int64,
			GradeName:              gradeName.String,
			GradeCode:              gradeCode.String,
			DepositDiscountPercent: discountPercent.Decimal,
			RequireNoShowZero:      requireNoShowZero.Bool,
			IsDefault:              isDefault.Bool,
			Priority:               int(priority.Int64),
			CreatedAt:              gradeCreatedAt.Time,
			UpdatedAt:              gradeUpdatedAt.Time,
		}
		if maxNoShowRate.Valid {
			rate := maxNoShowRate.Decimal
			grade.MaxNoShowRate = &rate
		}
		u.Grade = grade
	}

	return &u, nil
}

// IncrementNoShowCount атомарно увеличивает счетчик неявок
// Одним UPDATE, без read-modify-write на стороне приложения
func (r *Repository) IncrementNoShowCount(ctx context.Context, userID string) error {
	return r.incrementCounter(ctx, userID, "no_show_count", "IncrementNoShowCount")
}

// IncrementSuccessCount атомарно увеличивает счетчик успешных визитов
func (r *Repository) IncrementSuccessCount(ctx context.Context, userID string) error {
	return r.incrementCounter(ctx, userID, "success_count", "IncrementSuccessCount")
}

func (r *Repository) incrementCounter(ctx context.Context, userID, column, method string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("users").
		Set(column, squirrel.Expr(column+" + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %w", ErrBuildQuery, method, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %w", ErrExecQuery, method, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}
