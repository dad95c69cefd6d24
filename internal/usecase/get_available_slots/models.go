package get_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком слотов на день
type Response struct {
	Date      time.Time // Дата, на которую запрашивались слоты
	VenueID   int64     // ID площадки
	ServiceID int64     // ID услуги
	Slots     []Slot    // Сетка слотов
}

// Slot модель временного слота
type Slot struct {
	Start     time.Time // Начало слота
	End       time.Time // Конец слота
	Available bool      // Свободен ли слот
}
