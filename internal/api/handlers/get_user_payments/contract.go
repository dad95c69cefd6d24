package get_user_payments

import (
	"context"

	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
)

type PaymentService interface {
	GetUserPayments(ctx context.Context, req *models.GetUserPaymentsRequest) (*models.PaymentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
