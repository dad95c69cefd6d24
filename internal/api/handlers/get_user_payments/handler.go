package get_user_payments

import (
	"net/http"
	"strconv"

	"github.com/noshow-me/NSP-ReservationService/internal/api/handlers"
	"github.com/noshow-me/NSP-ReservationService/internal/api/middleware"
	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
)

const msgMissingUserID = "отсутствует ID пользователя"

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

// Handle GET /api/v1/users/me/payments?page=&limit=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/me/payments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	query := r.URL.Query()

	req := &models.GetUserPaymentsRequest{
		UserID: userID,
	}
	// Некорректные значения пагинации нормализует сервис
	req.Page, _ = strconv.Atoi(query.Get("page"))
	req.Limit, _ = strconv.Atoi(query.Get("limit"))

	result, err := h.service.GetUserPayments(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /users/me/payments - Failed: user_id=%s, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /users/me/payments - Returned %d payments: user_id=%s",
		len(result.Payments), userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
