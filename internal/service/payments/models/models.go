package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// Request модели

// RecordPaymentRequest запрос на проведение платежа по бронированию
type RecordPaymentRequest struct {
	UserID string  `json:"userId"`
	Method *string `json:"method,omitempty"` // card, transfer и т.п.
}

// GetUserPaymentsRequest запрос на историю платежей пользователя
type GetUserPaymentsRequest struct {
	UserID string `json:"userId"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// Response модели

// PaymentResponse ответ с данными платежа
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
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// PaymentListResponse ответ со списком платежей
type PaymentListResponse struct {
	Payments   []PaymentResponse `json:"payments"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// Pagination метаданные постраничной выборки
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Методы конвертации

// FromDomainPayment конвертирует domain модель в DTO
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
		UpdatedAt:        p.UpdatedAt,
	}

	if p.PaidAt != nil {
		paidStr := p.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidStr
	}

	return resp
}

// FromDomainPaymentList конвертирует список domain моделей в DTO
func FromDomainPaymentList(payments []*domain.Payment) *PaymentListResponse {
	resp := &PaymentListResponse{
		Payments: make([]PaymentResponse, 0, len(payments)),
	}

	for _, p := range payments {
		if converted := FromDomainPayment(p); converted != nil {
			resp.Payments = append(resp.Payments, *converted)
		}
	}

	return resp
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
