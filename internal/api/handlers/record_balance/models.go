package record_balance

import (
	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
)

// RecordBalanceRequest HTTP request model
type RecordBalanceRequest struct {
	ReservationID int64   `json:"reservationId"`
	Method        *string `json:"method,omitempty"` // card, transfer и т.п.
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RecordBalanceRequest) ToServiceRequest(userID string) *models.RecordPaymentRequest {
	return &models.RecordPaymentRequest{
		UserID: userID,
		Method: r.Method,
	}
}
