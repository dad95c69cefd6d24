package record_balance

import (
	"errors"
	"net/http"

	"github.com/noshow-me/NSP-ReservationService/internal/api/handlers"
	"github.com/noshow-me/NSP-ReservationService/internal/api/middleware"
	"github.com/noshow-me/NSP-ReservationService/internal/service/payments"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgReservationNotFound  = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgDepositNotCaptured   = "депозит по бронированию еще не оплачен"
	msgReservationNotActive = "бронирование не активно"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/balance
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /payments/balance - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RecordBalanceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payments/balance - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.ReservationID <= 0 {
		h.logger.Warn("POST /payments/balance - Invalid reservation ID: %d", req.ReservationID)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	result, err := h.service.RecordBalance(r.Context(), req.ReservationID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrReservationNotFound):
			h.logger.Warn("POST /payments/balance - Reservation not found: reservation_id=%d", req.ReservationID)
			handlers.RespondNotFound(w, msgReservationNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("POST /payments/balance - Access denied: reservation_id=%d, user_id=%s",
				req.ReservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrDepositNotCaptured):
			h.logger.Warn("POST /payments/balance - Deposit not captured: reservation_id=%d", req.ReservationID)
			handlers.RespondError(w, http.StatusConflict, msgDepositNotCaptured)

		case errors.Is(err, payments.ErrReservationNotActive):
			h.logger.Warn("POST /payments/balance - Reservation not active: reservation_id=%d", req.ReservationID)
			handlers.RespondError(w, http.StatusConflict, msgReservationNotActive)

		default:
			h.logger.Error("POST /payments/balance - Failed: reservation_id=%d, error=%v", req.ReservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/balance - Balance captured successfully: payment_id=%d, reservation_id=%d, user_id=%s",
		result.ID, req.ReservationID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
