package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	paymentRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/payment"
	reservationRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/reservation"
	userRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/user"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
	"github.com/noshow-me/NSP-ReservationService/internal/service/reservations/models"
)

// Service сервис жизненного цикла бронирований
type Service struct {
	reservationRepo ReservationRepository
	paymentRepo     PaymentRepository
	userRepo        UserRepository
	venueRepo       VenueRepository
	cache           AvailabilityCache
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	paymentRepo PaymentRepository,
	userRepo UserRepository,
	venueRepo VenueRepository,
	cache AvailabilityCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		userRepo:        userRepo,
		venueRepo:       venueRepo,
		cache:           cache,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование вместе с историей платежей
// Доступно клиенту бронирования, владельцу площадки и администратору
func (s *Service) GetByID(ctx context.Context, id int64, userID string) (*models.ReservationDetailResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%s", id, userID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	// Проверяем права доступа
	if err := s.checkReadAccess(ctx, reservation, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%s to reservation id=%d", userID, id)
		return nil, err
	}

	payments, err := s.paymentRepo.GetByReservation(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to get payments for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - failed to get payments: %w", ErrInternal, err)
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d with %d payments", id, len(payments))
	return &models.ReservationDetailResponse{
		Reservation: *models.FromDomainReservation(reservation),
		Payments:    models.FromDomainPaymentList(payments),
	}, nil
}

// GetUserReservations получает историю бронирований пользователя с пагинацией
// Опционально фильтрует по статусу
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%s, status=%v, page=%d",
		req.UserID, req.Status, req.Page)

	page, limit := normalizePagination(req.Page, req.Limit)

	// Конвертируем статус из строки в domain.ReservationStatus
	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%s", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	offset := uint64((page - 1) * limit)
	reservations, err := s.reservationRepo.GetByCustomer(ctx, req.UserID, domainStatus, uint64(limit), offset)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %w", ErrInternal, err)
	}

	total, err := s.reservationRepo.CountByCustomer(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserReservations: count error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - count error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: successfully fetched %d of %d reservations for user=%s",
		len(reservations), total, req.UserID)

	resp := models.FromDomainReservationList(reservations)
	resp.Pagination = models.NewPagination(page, limit, total)
	return resp, nil
}

// GetVenueReservations получает бронирования площадки с гибкой фильтрацией
// Доступно только владельцу площадки и администратору
func (s *Service) GetVenueReservations(ctx context.Context, req *models.GetVenueReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetVenueReservations: fetching reservations for venue=%d, user=%s", req.VenueID, req.UserID)

	venue, err := s.getVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}

	if err := s.checkVenueAccess(ctx, venue, req.UserID); err != nil {
		s.logger.Warn("GetVenueReservations: access denied for user=%s to venue=%d", req.UserID, req.VenueID)
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetVenueReservations: invalid filter for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.GetByVenueWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetVenueReservations: repository error for venue=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: GetVenueReservations - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("GetVenueReservations: successfully fetched %d reservations for venue=%d",
		len(reservations), req.VenueID)
	return models.FromDomainReservationList(reservations), nil
}

// Cancel отменяет бронирование
// Клиент может отменить свое бронирование не позднее чем за 24 часа до начала;
// администратор может отменить в любой момент
// Если по бронированию захвачен депозит, в той же транзакции пишется возврат
func (s *Service) Cancel(ctx context.Context, reservationID int64, req *models.CancelReservationRequest) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%s", reservationID, req.UserID)

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancelReasonLength {
		s.logger.Warn("Cancel: reason too long for reservation id=%d", reservationID)
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancelReasonLength)
	}

	var canceled *domain.Reservation

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Получаем бронирование с блокировкой (FOR UPDATE)
		reservation, err := s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("Cancel: reservation id=%d not found", reservationID)
				return ErrReservationNotFound
			}
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		actor, err := s.getUser(txCtx, req.UserID)
		if err != nil {
			return err
		}

		// Отменить может клиент бронирования или администратор
		if reservation.CustomerUserID != req.UserID && !actor.IsAdmin() {
			s.logger.Warn("Cancel: access denied for user=%s to reservation id=%d", req.UserID, reservationID)
			return ErrAccessDenied
		}

		// Терминальные статусы закрыты для переходов
		if reservation.IsTerminal() {
			s.logger.Warn("Cancel: reservation id=%d already finalized, status=%s", reservationID, reservation.Status)
			return fmt.Errorf("%w: cannot cancel reservation in status %s", ErrAlreadyFinalized, reservation.Status)
		}

		// Правило 24 часов: ровно 24 часа до начала еще допустимо
		// Администратор может отменить и позже
		now := s.timeProvider.Now()
		if !actor.IsAdmin() && reservation.ScheduledStart.Sub(now) < domain.CancelNoticePeriod {
			s.logger.Warn("Cancel: reservation id=%d starts at %s, less than 24h away",
				reservationID, reservation.ScheduledStart)
			return ErrTooLateToCancel
		}

		if err := s.reservationRepo.Cancel(txCtx, reservationID, req.UserID, req.Reason); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				// Статус изменился между чтением и обновлением
				s.logger.Warn("Cancel: reservation id=%d lost status race", reservationID)
				return fmt.Errorf("%w: reservation is no longer BOOKED", ErrAlreadyFinalized)
			}
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - repository error: %w", ErrInternal, err)
		}

		// Возврат депозита, если он был захвачен
		deposit, err := s.paymentRepo.GetCapturedDeposit(txCtx, reservationID)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
				s.logger.Info("Cancel: no captured deposit for reservation id=%d, nothing to refund", reservationID)
				canceled = reservation
				return nil
			}
			s.logger.Error("Cancel: failed to get deposit for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - failed to get deposit: %w", ErrInternal, err)
		}

		refund := &domain.Payment{
			ReservationID:    reservationID,
			PayerUserID:      reservation.CustomerUserID,
			PaymentType:      domain.PaymentTypeRefund,
			Status:           domain.PaymentStatusRefunded,
			Method:           deposit.Method,
			Provider:         deposit.Provider,
			Amount:           deposit.Amount,
			Currency:         deposit.Currency,
			RelatedPaymentID: &deposit.ID,
			PaidAt:           &now,
		}

		if _, err := s.paymentRepo.Create(txCtx, refund); err != nil {
			s.logger.Error("Cancel: failed to create refund for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: Cancel - failed to create refund: %w", ErrInternal, err)
		}

		s.logger.Info("Cancel: refunded deposit payment id=%d amount=%s %s for reservation id=%d",
			deposit.ID, deposit.Amount, deposit.Currency, reservationID)

		canceled = reservation
		return nil
	})

	if err != nil {
		return err
	}

	// Отмена освобождает слот: сбрасываем кеш доступности дня (best effort)
	if err := s.cache.InvalidateDay(ctx, canceled.ServiceID, canceled.ScheduledStart); err != nil {
		s.logger.Warn("Cancel: failed to invalidate availability cache: %v", err)
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d", reservationID)
	return nil
}

// MarkNoShow отмечает неявку клиента
// Доступно владельцу площадки и администратору; увеличивает счетчик неявок клиента
func (s *Service) MarkNoShow(ctx context.Context, reservationID int64, userID string) error {
	s.logger.Info("MarkNoShow: marking reservation id=%d by user=%s", reservationID, userID)

	reservation, err := s.finalize(ctx, reservationID, userID, domain.StatusNoShow)
	if err != nil {
		return err
	}

	// Неявка освобождает слот: сбрасываем кеш доступности дня (best effort)
	if err := s.cache.InvalidateDay(ctx, reservation.ServiceID, reservation.ScheduledStart); err != nil {
		s.logger.Warn("MarkNoShow: failed to invalidate availability cache: %v", err)
	}

	s.logger.Info("MarkNoShow: successfully marked reservation id=%d as no-show", reservationID)
	return nil
}

// Complete отмечает успешный визит
// Доступно владельцу площадки и администратору; увеличивает счетчик успешных визитов
func (s *Service) Complete(ctx context.Context, reservationID int64, userID string) error {
	s.logger.Info("Complete: completing reservation id=%d by user=%s", reservationID, userID)

	if _, err := s.finalize(ctx, reservationID, userID, domain.StatusCompleted); err != nil {
		return err
	}

	s.logger.Info("Complete: successfully completed reservation id=%d", reservationID)
	return nil
}

// finalize переводит бронирование в COMPLETED или NO_SHOW и обновляет счетчики репутации
// Обе операции доступны владельцу площадки бронирования и администратору
func (s *Service) finalize(ctx context.Context, reservationID int64, userID string, target domain.ReservationStatus) (*domain.Reservation, error) {
	var result *domain.Reservation

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Получаем бронирование с блокировкой (FOR UPDATE)
		reservation, err := s.reservationRepo.GetByID(txCtx, reservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("finalize: reservation id=%d not found", reservationID)
				return ErrReservationNotFound
			}
			s.logger.Error("finalize: repository error for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: finalize - repository error: %w", ErrInternal, err)
		}

		venue, err := s.getVenue(txCtx, reservation.VenueID)
		if err != nil {
			return err
		}

		if err := s.checkVenueAccess(txCtx, venue, userID); err != nil {
			s.logger.Warn("finalize: access denied for user=%s to reservation id=%d", userID, reservationID)
			return err
		}

		if reservation.IsTerminal() {
			s.logger.Warn("finalize: reservation id=%d already finalized, status=%s", reservationID, reservation.Status)
			return fmt.Errorf("%w: cannot mark %s reservation as %s", ErrAlreadyFinalized, reservation.Status, target)
		}

		switch target {
		case domain.StatusNoShow:
			if err := s.reservationRepo.MarkNoShow(txCtx, reservationID); err != nil {
				return s.mapFinalizeError(err, reservationID)
			}
			if err := s.userRepo.IncrementNoShowCount(txCtx, reservation.CustomerUserID); err != nil {
				s.logger.Error("finalize: failed to increment no-show count for user=%s: %v",
					reservation.CustomerUserID, err)
				return fmt.Errorf("%w: finalize - failed to increment no-show count: %w", ErrInternal, err)
			}
		case domain.StatusCompleted:
			if err := s.reservationRepo.Complete(txCtx, reservationID); err != nil {
				return s.mapFinalizeError(err, reservationID)
			}
			if err := s.userRepo.IncrementSuccessCount(txCtx, reservation.CustomerUserID); err != nil {
				s.logger.Error("finalize: failed to increment success count for user=%s: %v",
					reservation.CustomerUserID, err)
				return fmt.Errorf("%w: finalize - failed to increment success count: %w", ErrInternal, err)
			}
		default:
			return fmt.Errorf("%w: unsupported target status %s", ErrInternal, target)
		}

		result = reservation
		return nil
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// Вспомогательные методы

func (s *Service) mapFinalizeError(err error, reservationID int64) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		// Статус изменился между чтением и обновлением
		s.logger.Warn("finalize: reservation id=%d lost status race", reservationID)
		return fmt.Errorf("%w: reservation is no longer BOOKED", ErrAlreadyFinalized)
	}
	s.logger.Error("finalize: repository error for reservation id=%d: %v", reservationID, err)
	return fmt.Errorf("%w: finalize - repository error: %w", ErrInternal, err)
}

func (s *Service) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("getUser: user id=%s not found", userID)
			return nil, ErrUserNotFound
		}
		s.logger.Error("getUser: failed to get user id=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: failed to get user: %w", ErrInternal, err)
	}
	return user, nil
}

func (s *Service) getVenue(ctx context.Context, venueID int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetVenueByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("getVenue: venue id=%d not found", venueID)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("getVenue: failed to get venue id=%d: %v", venueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %w", ErrInternal, err)
	}
	return venue, nil
}

// checkReadAccess проверяет доступ на чтение бронирования
// Клиент видит свое бронирование, владелец площадки и администратор - любое на площадке
func (s *Service) checkReadAccess(ctx context.Context, reservation *domain.Reservation, userID string) error {
	if reservation.CustomerUserID == userID {
		return nil
	}

	venue, err := s.getVenue(ctx, reservation.VenueID)
	if err != nil {
		return err
	}

	return s.checkVenueAccess(ctx, venue, userID)
}

// checkVenueAccess проверяет, что пользователь владеет площадкой или является администратором
func (s *Service) checkVenueAccess(ctx context.Context, venue *domain.Venue, userID string) error {
	if venue.IsOwnedBy(userID) {
		return nil
	}

	actor, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if actor.IsAdmin() {
		return nil
	}

	return ErrAccessDenied
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = domain.DefaultPage
	}
	if limit < 1 {
		limit = domain.DefaultPageSize
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}
	return page, limit
}
