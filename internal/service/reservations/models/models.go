package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// CancelReservationRequest запрос на отмену бронирования
type CancelReservationRequest struct {
	UserID string  `json:"userId"`
	Reason *string `json:"reason,omitempty"`
}

// GetUserReservationsRequest запрос на историю бронирований пользователя
type GetUserReservationsRequest struct {
	UserID string  `json:"userId"`
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// GetVenueReservationsRequest запрос на бронирования площадки
type GetVenueReservationsRequest struct {
	UserID          string     `json:"userId"`
	VenueID         int64      `json:"venueId"`
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить отмененные и no-show
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetVenueReservationsRequest) ToDomainFilter() (domain.ReservationsFilter, error) {
	filter := domain.ReservationsFilter{
		VenueID:         r.VenueID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID             int64     `json:"id"`
	CustomerUserID string    `json:"customerUserId"`
	VenueID        int64     `json:"venueId"`
	ServiceID      int64     `json:"serviceId"`
	PartySize      int       `json:"partySize"`
	ScheduledStart time.Time `json:"scheduledStart"`
	ScheduledEnd   time.Time `json:"scheduledEnd"`
	Status         string    `json:"status"`

	// Снимок ценообразования на момент создания
	TotalPriceAtBooking         decimal.Decimal `json:"totalPriceAtBooking"`
	AppliedDepositRatePercent   decimal.Decimal `json:"appliedDepositRatePercent"`
	AppliedGradeID              *int64          `json:"appliedGradeId,omitempty"`
	AppliedGradeDiscountPercent decimal.Decimal `json:"appliedGradeDiscountPercent"`
	DepositAmount               decimal.Decimal `json:"depositAmount"`
	BalanceAmount               decimal.Decimal `json:"balanceAmount"`
	Currency                    string          `json:"currency"`

	CancelReason   *string `json:"cancelReason,omitempty"`
	CanceledAt     *string `json:"canceledAt,omitempty"`     // ISO 8601
	NoShowMarkedAt *string `json:"noShowMarkedAt,omitempty"` // ISO 8601

	BookedAt  time.Time `json:"bookedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationDetailResponse бронирование вместе с историей платежей
type ReservationDetailResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Payments    []PaymentResponse   `json:"payments"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Pagination   *Pagination           `json:"pagination,omitempty"`
}

// PaymentResponse запись платежной книги бронирования
type PaymentResponse struct {
	ID               int64           `json:"id"`
	ReservationID    int64           `json:"reservationId"`
	PayerUserID      string          `json:"payerUserId"`
	PaymentType      string          `json:"paymentType"`
	Status           string          `json:"status"`
	Method           *string         `json:"method,omitempty"`
	Provider         *string         `json:"provider,omitempty"`
	ProviderTxnID    *string         `json:"providerTxnId,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	RelatedPaymentID *int64          `json:"relatedPaymentId,omitempty"`
	PaidAt           *string         `json:"paidAt,omitempty"` // ISO 8601
	CreatedAt        time.Time       `json:"createdAt"`
}

// Pagination метаданные постраничной выборки
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Методы конвертации

// ToDomainReservationStatus валидирует и конвертирует строковый статус
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	switch domain.ReservationStatus(status) {
	case domain.StatusBooked, domain.StatusCompleted, domain.StatusCanceled, domain.StatusNoShow:
		return domain.ReservationStatus(status), nil
	default:
		return "", ErrInvalidStatus
	}
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:             r.ID,
		CustomerUserID: r.CustomerUserID,
		VenueID:        r.VenueID,
		ServiceID:      r.ServiceID,
		PartySize:      r.PartySize,
		ScheduledStart: r.ScheduledStart,
		ScheduledEnd:   r.ScheduledEnd,
		Status:         string(r.Status),

		TotalPriceAtBooking:         r.TotalPriceAtBooking,
		AppliedDepositRatePercent:   r.AppliedDepositRatePercent,
		AppliedGradeID:              r.AppliedGradeID,
		AppliedGradeDiscountPercent: r.AppliedGradeDiscountPercent,
		DepositAmount:               r.DepositAmount,
		BalanceAmount:               r.BalanceAmount(),
		Currency:                    r.Currency,

		CancelReason: r.CancelReason,
		BookedAt:     r.BookedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	if r.CanceledAt != nil {
		canceledStr := r.CanceledAt.Format(time.RFC3339)
		resp.CanceledAt = &canceledStr
	}
	if r.NoShowMarkedAt != nil {
		noShowStr := r.NoShowMarkedAt.Format(time.RFC3339)
		resp.NoShowMarkedAt = &noShowStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if converted := FromDomainReservation(r); converted != nil {
			resp.Reservations = append(resp.Reservations, *converted)
		}
	}

	return resp
}

// FromDomainPayment конвертирует платеж в DTO
func FromDomainPayment(p *domain.Payment) *PaymentResponse {
	if p == nil {
		return nil
	}

	resp := &PaymentResponse{
		ID:               p.ID,
		ReservationID:    p.ReservationID,
		PayerUserID:      p.PayerUserID,
		PaymentType:      string(p.PaymentType),
		Status:           string(p.Status),
		Method:           p.Method,
		Provider:         p.Provider,
		ProviderTxnID:    p.ProviderTxnID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		RelatedPaymentID: p.RelatedPaymentID,
		CreatedAt:        p.CreatedAt,
	}

	if p.PaidAt != nil {
		paidStr := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidStr
	}

	return resp
}

// FromDomainPaymentList конвертирует список платежей в DTO
func FromDomainPaymentList(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		if converted := FromDomainPayment(p); converted != nil {
			out = append(out, *converted)
		}
	}
	return out
}

// NewPagination строит метаданные пагинации
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
