package domain

import "time"

// Default business values
const (
	DefaultCurrency = "KRW"

	// Фоллбек рабочего окна площадки, когда расписание не задано
	DefaultOpenHour  = 9
	DefaultCloseHour = 21

	// Отмена разрешена не позднее чем за 24 часа до начала
	CancelNoticePeriod = 24 * time.Hour
)

// Business validation constants
const (
	MaxPartySize          = 100
	MaxCancelReasonLength = 500
)

// Pagination defaults for history endpoints
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses статусы, освобождающие слот
// Используются в запросах доступности
var InactiveStatuses = []ReservationStatus{
	StatusCanceled,
	StatusNoShow,
}
