package get_available_slots

import (
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	getAvailableSlots "github.com/noshow-me/NSP-ReservationService/internal/usecase/get_available_slots"
)

// SlotsResponse HTTP response model
type SlotsResponse struct {
	Date      string         `json:"date"`
	VenueID   int64          `json:"venueId"`
	ServiceID int64          `json:"serviceId"`
	Slots     []SlotResponse `json:"slots"`
}

// SlotResponse модель одного слота
type SlotResponse struct {
	Start     string `json:"start"` // ISO 8601
	End       string `json:"end"`   // ISO 8601
	Available bool   `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Start:     s.Start.Format(time.RFC3339),
			End:       s.End.Format(time.RFC3339),
			Available: s.Available,
		})
	}

	return &SlotsResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		VenueID:   resp.VenueID,
		ServiceID: resp.ServiceID,
		Slots:     slots,
	}
}
