package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role представляет роль пользователя в системе
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
)

// User represents a platform user with reputation counters
// Users are never hard-deleted, only deactivated
type User struct {
	UserID       string
	Email        string
	RealName     *string
	Roles        []Role
	IsActive     bool
	GradeID      int64
	NoShowCount  int
	SuccessCount int
	DeletedAt    *time.Time

	// Текущий грейд пользователя; nil, если grade_id ссылается на отсутствующую запись
	Grade *UserGrade

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserGrade defines a reputation tier granting a deposit discount
// Immutable reference data; grade assignment itself happens outside the booking path
type UserGrade struct {
	GradeID                int64
	GradeName              string
	GradeCode              string
	DepositDiscountPercent decimal.Decimal
	MaxNoShowRate          *decimal.Decimal
	RequireNoShowZero      bool
	IsDefault              bool
	Priority               int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GradeDiscountPercent возвращает скидку на депозит по грейду
// Отсутствующий грейд дает 0% и никогда не блокирует бронирование;
// аномалию данных логирует вызывающая сторона
func GradeDiscountPercent(grade *UserGrade) decimal.Decimal {
	if grade == nil {
		return decimal.Zero
	}
	return grade.DepositDiscountPercent
}
