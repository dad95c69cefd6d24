package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/internal/infra/cache"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
)

// UseCase use case для получения дневной сетки слотов услуги
type UseCase struct {
	reservationRepo ReservationRepository
	venueRepo       VenueRepository
	cache           AvailabilityCache
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	venueRepo VenueRepository,
	availabilityCache AvailabilityCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		venueRepo:       venueRepo,
		cache:           availabilityCache,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Сетка дня читается сквозь кеш; кеш сбрасывается при любом изменении бронирований дня
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, date=%s",
		req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Дата не должна быть в прошлом
	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 3. Получаем услугу вместе с площадкой
	service, venue, err := uc.venueRepo.GetServiceWithVenue(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	if !venue.IsBookable() {
		uc.logger.Warn("GetAvailableSlots: venue id=%d is not bookable", venue.VenueID)
		return nil, ErrVenueNotFound
	}

	// 4. Пробуем прочитать сетку из кеша
	cached, err := uc.cache.GetDaySlots(ctx, req.ServiceID, req.Date)
	if err == nil {
		uc.logger.Info("GetAvailableSlots: cache hit for service=%d, date=%s",
			req.ServiceID, req.Date.Format(domain.DateFormat))
		return uc.buildResponse(req, venue.VenueID, cached), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Отказ кеша не роняет запрос
		uc.logger.Warn("GetAvailableSlots: cache read failed: %v", err)
	}

	// 5. Получаем активные бронирования, пересекающие рабочее окно дня
	dayOpen := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(),
		domain.DefaultOpenHour, 0, 0, 0, req.Date.Location())
	dayClose := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(),
		domain.DefaultCloseHour, 0, 0, 0, req.Date.Location())

	reservations, err := uc.reservationRepo.FindOverlapping(ctx, req.ServiceID, dayOpen, dayClose)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to get reservations: %w", ErrInternal, err)
	}

	// 6. Строим сетку дня из бакетов длительности услуги
	slots := domain.BuildDaySlots(
		req.Date,
		domain.DefaultOpenHour,
		domain.DefaultCloseHour,
		service.DurationMinutes,
		reservations,
	)

	// 7. Записываем сетку в кеш (best effort)
	if err := uc.cache.SetDaySlots(ctx, req.ServiceID, req.Date, slots); err != nil {
		uc.logger.Warn("GetAvailableSlots: cache write failed: %v", err)
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for service=%d, date=%s",
		len(slots), req.ServiceID, req.Date.Format(domain.DateFormat))

	return uc.buildResponse(req, venue.VenueID, slots), nil
}

func (uc *UseCase) buildResponse(req *Request, venueID int64, slots []domain.Slot) *Response {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, Slot{Start: s.Start, End: s.End, Available: s.Available})
	}

	return &Response{
		Date:      req.Date,
		VenueID:   venueID,
		ServiceID: req.ServiceID,
		Slots:     out,
	}
}
