package record_deposit

import (
	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
)

// RecordDepositRequest HTTP request model
type RecordDepositRequest struct {
	ReservationID int64   `json:"reservationId"`
	Method        *string `json:"method,omitempty"` // card, transfer и т.п.
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RecordDepositRequest) ToServiceRequest(userID string) *models.RecordPaymentRequest {
	return &models.RecordPaymentRequest{
		UserID: userID,
		Method: r.Method,
	}
}
