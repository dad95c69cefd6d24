package create_reservation

import (
	"time"

	"github.com/shopspring/decimal"

	createReservation "github.com/noshow-me/NSP-ReservationService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ServiceID      int64  `json:"serviceId"`
	PartySize      int    `json:"partySize"`
	ScheduledStart string `json:"scheduledStart"` // ISO 8601
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID             int64  `json:"id"`
	CustomerUserID string `json:"customerUserId"`
	VenueID        int64  `json:"venueId"`
	ServiceID      int64  `json:"serviceId"`
	PartySize      int    `json:"partySize"`
	ScheduledStart string `json:"scheduledStart"`
	ScheduledEnd   string `json:"scheduledEnd"`
	Status         string `json:"status"`

	TotalPriceAtBooking         decimal.Decimal `json:"totalPriceAtBooking"`
	AppliedDepositRatePercent   decimal.Decimal `json:"appliedDepositRatePercent"`
	AppliedGradeID              *int64          `json:"appliedGradeId,omitempty"`
	AppliedGradeDiscountPercent decimal.Decimal `json:"appliedGradeDiscountPercent"`
	DepositAmount               decimal.Decimal `json:"depositAmount"`
	BalanceAmount               decimal.Decimal `json:"balanceAmount"`
	Currency                    string          `json:"currency"`

	BookedAt  string `json:"bookedAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID string) (*createReservation.Request, error) {
	scheduledStart, err := time.Parse(time.RFC3339, r.ScheduledStart)
	if err != nil {
		return nil, err
	}

	return &createReservation.Request{
		CustomerUserID: userID,
		ServiceID:      r.ServiceID,
		PartySize:      r.PartySize,
		ScheduledStart: scheduledStart,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:             resp.ID,
		CustomerUserID: resp.CustomerUserID,
		VenueID:        resp.VenueID,
		ServiceID:      resp.ServiceID,
		PartySize:      resp.PartySize,
		ScheduledStart: resp.ScheduledStart.Format(time.RFC3339),
		ScheduledEnd:   resp.ScheduledEnd.Format(time.RFC3339),
		Status:         resp.Status,

		TotalPriceAtBooking:         resp.TotalPriceAtBooking,
		AppliedDepositRatePercent:   resp.AppliedDepositRatePercent,
		AppliedGradeID:              resp.AppliedGradeID,
		AppliedGradeDiscountPercent: resp.AppliedGradeDiscountPercent,
		DepositAmount:               resp.DepositAmount,
		BalanceAmount:               resp.BalanceAmount,
		Currency:                    resp.Currency,

		BookedAt:  resp.BookedAt.Format(time.RFC3339),
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
