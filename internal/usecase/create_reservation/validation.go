package create_reservation

import (
	"fmt"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerUserID == "" {
		return fmt.Errorf("%w: customerUserID is required", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.PartySize < 1 {
		return fmt.Errorf("%w: partySize must be at least 1", ErrInvalidInput)
	}

	if req.PartySize > domain.MaxPartySize {
		return fmt.Errorf("%w: partySize must not exceed %d", ErrInvalidInput, domain.MaxPartySize)
	}

	if req.ScheduledStart.IsZero() {
		return fmt.Errorf("%w: scheduledStart is required", ErrInvalidInput)
	}

	return nil
}

// validateStart проверяет, что начало слота не в прошлом
func validateStart(start, now time.Time) error {
	if !start.After(now) {
		return ErrPastDate
	}
	return nil
}
