package create_reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerUserID string    // ID клиента (из контекста аутентификации)
	ServiceID      int64     // ID услуги
	PartySize      int       // Размер компании
	ScheduledStart time.Time // Начало слота
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID             int64     // ID созданного бронирования
	CustomerUserID string    // ID клиента
	VenueID        int64     // ID площадки
	ServiceID      int64     // ID услуги
	PartySize      int       // Размер компании
	ScheduledStart time.Time // Начало слота
	ScheduledEnd   time.Time // Конец слота
	Status         string    // Статус бронирования

	// Снимок ценообразования
	TotalPriceAtBooking         decimal.Decimal // Полная стоимость на момент создания
	AppliedDepositRatePercent   decimal.Decimal // Примененная ставка депозита, %
	AppliedGradeID              *int64          // Грейд клиента на момент создания
	AppliedGradeDiscountPercent decimal.Decimal // Скидка грейда на депозит, %
	DepositAmount               decimal.Decimal // Сумма депозита
	BalanceAmount               decimal.Decimal // Остаток к оплате
	Currency                    string          // Валюта

	BookedAt  time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
