package create_reservation

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("create_reservation: service not found")

	// ErrVenueNotFound возвращается, когда площадка не найдена или не принимает бронирования
	ErrVenueNotFound = errors.New("create_reservation: venue not found")

	// ErrCustomerNotFound возвращается, когда клиент не найден или деактивирован
	ErrCustomerNotFound = errors.New("create_reservation: customer not found")

	// ErrSlotTaken возвращается, когда слот уже занят активным бронированием
	ErrSlotTaken = errors.New("create_reservation: slot already taken")

	// ErrPastDate возвращается при попытке забронировать время в прошлом
	ErrPastDate = errors.New("create_reservation: scheduled start is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
