package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	reservationRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/reservation"
	userRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/user"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	venueRepo       VenueRepository
	userRepo        UserRepository
	cache           AvailabilityCache
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	venueRepo VenueRepository,
	userRepo UserRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		venueRepo:       venueRepo,
		userRepo:        userRepo,
		cache:           cache,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения двойного бронирования слота;
// частичный уникальный индекс на (service_id, scheduled_start) остается финальной защитой
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: customer=%s, service=%d, party=%d, start=%s",
		req.CustomerUserID, req.ServiceID, req.PartySize, req.ScheduledStart.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Слот должен быть в будущем
	now := uc.timeProvider.Now()
	if err := validateStart(req.ScheduledStart, now); err != nil {
		uc.logger.Warn("CreateReservation: scheduled start %s is in the past", req.ScheduledStart)
		return nil, err
	}

	// Переменная для хранения результата
	var result *domain.Reservation

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем услугу вместе с площадкой
		service, venue, err := uc.venueRepo.GetServiceWithVenue(txCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, venueRepo.ErrServiceNotFound) {
				uc.logger.Warn("CreateReservation: service id=%d not found", req.ServiceID)
				return ErrServiceNotFound
			}
			uc.logger.Error("CreateReservation: failed to get service id=%d: %v", req.ServiceID, err)
			return fmt.Errorf("%w: failed to get service: %w", ErrInternal, err)
		}

		if !service.IsActive {
			uc.logger.Warn("CreateReservation: service id=%d is inactive", req.ServiceID)
			return ErrServiceNotFound
		}

		if !venue.IsBookable() {
			uc.logger.Warn("CreateReservation: venue id=%d is not bookable", venue.VenueID)
			return ErrVenueNotFound
		}

		scheduledEnd := req.ScheduledStart.Add(service.Duration())

		// 3.2. Получаем клиента вместе с грейдом (с блокировкой внутри транзакции)
		customer, err := uc.userRepo.GetByID(txCtx, req.CustomerUserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				uc.logger.Warn("CreateReservation: customer id=%s not found", req.CustomerUserID)
				return ErrCustomerNotFound
			}
			uc.logger.Error("CreateReservation: failed to get customer id=%s: %v", req.CustomerUserID, err)
			return fmt.Errorf("%w: failed to get customer: %w", ErrInternal, err)
		}

		if !customer.IsActive || customer.DeletedAt != nil {
			uc.logger.Warn("CreateReservation: customer id=%s is deactivated", req.CustomerUserID)
			return ErrCustomerNotFound
		}

		// Висячий grade_id не блокирует бронирование: скидка 0%, аномалию логируем
		if customer.Grade == nil {
			uc.logger.Warn("CreateReservation: customer id=%s references missing grade id=%d, applying 0%% discount",
				customer.UserID, customer.GradeID)
		}

		// 3.3. Проверяем пересечения с активными бронированиями (FOR UPDATE)
		overlapping, err := uc.reservationRepo.FindOverlapping(txCtx, req.ServiceID, req.ScheduledStart, scheduledEnd)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to find overlapping reservations: %v", err)
			return fmt.Errorf("%w: failed to find overlapping reservations: %w", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			uc.logger.Warn("CreateReservation: slot service=%d start=%s already taken",
				req.ServiceID, req.ScheduledStart)
			return ErrSlotTaken
		}

		// 3.4. Фиксируем снимок ценообразования
		gradeDiscount := domain.GradeDiscountPercent(customer.Grade)
		pricing := domain.ComputePricing(
			service.Price,
			req.PartySize,
			service.EffectiveDepositRate(venue),
			gradeDiscount,
		)

		reservation := &domain.Reservation{
			CustomerUserID: req.CustomerUserID,
			VenueID:        venue.VenueID,
			ServiceID:      service.ServiceID,
			PartySize:      req.PartySize,
			ScheduledStart: req.ScheduledStart,
			ScheduledEnd:   scheduledEnd,
			Status:         domain.StatusBooked,

			TotalPriceAtBooking:         pricing.TotalPrice,
			AppliedDepositRatePercent:   pricing.FinalDepositRate,
			AppliedGradeDiscountPercent: pricing.GradeDiscountPercent,
			DepositAmount:               pricing.DepositAmount,
			Currency:                    venue.Currency,
		}
		if customer.Grade != nil {
			gradeID := customer.Grade.GradeID
			reservation.AppliedGradeID = &gradeID
		}

		// 3.5. Сохраняем бронирование
		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateReservation: unique index rejected slot service=%d start=%s",
					req.ServiceID, req.ScheduledStart)
				return ErrSlotTaken
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 4. Сбрасываем кеш доступности дня (best effort)
	if err := uc.cache.InvalidateDay(ctx, result.ServiceID, result.ScheduledStart); err != nil {
		uc.logger.Warn("CreateReservation: failed to invalidate availability cache: %v", err)
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d, deposit=%s %s",
		result.ID, result.DepositAmount, result.Currency)

	return toResponse(result), nil
}

func toResponse(r *domain.Reservation) *Response {
	return &Response{
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

		BookedAt:  r.BookedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
