package payments

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrAccessDenied возвращается, когда платит не клиент бронирования
	ErrAccessDenied = errors.New("access denied")

	// ErrReservationNotActive возвращается при оплате бронирования не в статусе BOOKED
	ErrReservationNotActive = errors.New("reservation is not active")

	// ErrDepositAlreadyCaptured возвращается при повторной оплате депозита
	ErrDepositAlreadyCaptured = errors.New("deposit already captured")

	// ErrDepositNotCaptured возвращается при оплате остатка без захваченного депозита
	ErrDepositNotCaptured = errors.New("deposit not captured yet")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
