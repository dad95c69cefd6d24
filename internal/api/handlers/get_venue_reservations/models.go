package get_venue_reservations

import (
	"net/url"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/internal/service/reservations/models"
)

// ParseQuery строит запрос сервиса из query-параметров
func ParseQuery(query url.Values, venueID int64, userID string) (*models.GetVenueReservationsRequest, error) {
	req := &models.GetVenueReservationsRequest{
		UserID:  userID,
		VenueID: venueID,
	}

	if startDate := query.Get("startDate"); startDate != "" {
		parsed, err := time.Parse(domain.DateFormat, startDate)
		if err != nil {
			return nil, err
		}
		req.StartDate = &parsed
	}

	if endDate := query.Get("endDate"); endDate != "" {
		parsed, err := time.Parse(domain.DateFormat, endDate)
		if err != nil {
			return nil, err
		}
		req.EndDate = &parsed
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	return req, nil
}
