package record_deposit

import (
	"context"

	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
)

type PaymentService interface {
	RecordDeposit(ctx context.Context, reservationID int64, req *models.RecordPaymentRequest) (*models.PaymentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
