package cancel_reservation

import (
	"github.com/noshow-me/NSP-ReservationService/internal/service/reservations/models"
)

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CancelReservationRequest) ToServiceRequest(userID string) *models.CancelReservationRequest {
	return &models.CancelReservationRequest{
		UserID: userID,
		Reason: r.Reason,
	}
}
