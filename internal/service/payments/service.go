package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	paymentRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/payment"
	reservationRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/reservation"
	"github.com/noshow-me/NSP-ReservationService/internal/service/payments/models"
	"github.com/noshow-me/NSP-ReservationService/pkg/ptr"
)

// Тестовый платежный шлюз: реального списания нет, платеж сразу CAPTURED
const testProvider = "test_pg"

// Service сервис платежной книги бронирований
type Service struct {
	paymentRepo     PaymentRepository
	reservationRepo ReservationRepository
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса платежей
func NewService(
	paymentRepo PaymentRepository,
	reservationRepo ReservationRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		paymentRepo:     paymentRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// RecordDeposit проводит депозит по бронированию
// Сумма берется из снимка ценообразования бронирования, не из запроса
// Повторная оплата депозита возвращает конфликт (частичный уникальный индекс - финальная защита)
func (s *Service) RecordDeposit(ctx context.Context, reservationID int64, req *models.RecordPaymentRequest) (*models.PaymentResponse, error) {
	s.logger.Info("RecordDeposit: reservation id=%d, payer=%s", reservationID, req.UserID)

	var result *domain.Payment

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		reservation, err := s.getBookedReservation(txCtx, reservationID, req.UserID, "RecordDeposit")
		if err != nil {
			return err
		}

		now := s.timeProvider.Now()
		payment := &domain.Payment{
			ReservationID: reservationID,
			PayerUserID:   req.UserID,
			PaymentType:   domain.PaymentTypeDeposit,
			Status:        domain.PaymentStatusCaptured,
			Method:        req.Method,
			Provider:      ptr.Ptr(testProvider),
			ProviderTxnID: ptr.Ptr(uuid.NewString()),
			Amount:        reservation.DepositAmount,
			Currency:      reservation.Currency,
			PaidAt:        &now,
		}

		created, err := s.paymentRepo.Create(txCtx, payment)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrDepositAlreadyCaptured) {
				s.logger.Warn("RecordDeposit: deposit already captured for reservation id=%d", reservationID)
				return ErrDepositAlreadyCaptured
			}
			s.logger.Error("RecordDeposit: failed to create payment for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: RecordDeposit - failed to create payment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("RecordDeposit: captured deposit payment id=%d amount=%s %s for reservation id=%d",
		result.ID, result.Amount, result.Currency, reservationID)
	return models.FromDomainPayment(result), nil
}

// RecordBalance проводит оплату остатка по бронированию
// Требует захваченного депозита; сумма = полная стоимость - депозит
func (s *Service) RecordBalance(ctx context.Context, reservationID int64, req *models.RecordPaymentRequest) (*models.PaymentResponse, error) {
	s.logger.Info("RecordBalance: reservation id=%d, payer=%s", reservationID, req.UserID)

	var result *domain.Payment

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		reservation, err := s.getBookedReservation(txCtx, reservationID, req.UserID, "RecordBalance")
		if err != nil {
			return err
		}

		// Остаток платится только после депозита (строка блокируется FOR UPDATE)
		deposit, err := s.paymentRepo.GetCapturedDeposit(txCtx, reservationID)
		if err != nil {
			if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
				s.logger.Warn("RecordBalance: no captured deposit for reservation id=%d", reservationID)
				return ErrDepositNotCaptured
			}
			s.logger.Error("RecordBalance: failed to get deposit for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: RecordBalance - failed to get deposit: %w", ErrInternal, err)
		}

		now := s.timeProvider.Now()
		payment := &domain.Payment{
			ReservationID:    reservationID,
			PayerUserID:      req.UserID,
			PaymentType:      domain.PaymentTypeBalance,
			Status:           domain.PaymentStatusCaptured,
			Method:           req.Method,
			Provider:         ptr.Ptr(testProvider),
			ProviderTxnID:    ptr.Ptr(uuid.NewString()),
			Amount:           reservation.BalanceAmount(),
			Currency:         reservation.Currency,
			RelatedPaymentID: &deposit.ID,
			PaidAt:           &now,
		}

		created, err := s.paymentRepo.Create(txCtx, payment)
		if err != nil {
			s.logger.Error("RecordBalance: failed to create payment for reservation id=%d: %v", reservationID, err)
			return fmt.Errorf("%w: RecordBalance - failed to create payment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("RecordBalance: captured balance payment id=%d amount=%s %s for reservation id=%d",
		result.ID, result.Amount, result.Currency, reservationID)
	return models.FromDomainPayment(result), nil
}

// GetUserPayments получает историю платежей пользователя с пагинацией
func (s *Service) GetUserPayments(ctx context.Context, req *models.GetUserPaymentsRequest) (*models.PaymentListResponse, error) {
	s.logger.Info("GetUserPayments: fetching payments for user=%s, page=%d", req.UserID, req.Page)

	page, limit := normalizePagination(req.Page, req.Limit)

	offset := uint64((page - 1) * limit)
	payments, err := s.paymentRepo.GetByPayer(ctx, req.UserID, uint64(limit), offset)
	if err != nil {
		s.logger.Error("GetUserPayments: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserPayments - repository error: %w", ErrInternal, err)
	}

	total, err := s.paymentRepo.CountByPayer(ctx, req.UserID)
	if err != nil {
		s.logger.Error("GetUserPayments: count error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserPayments - count error: %w", ErrInternal, err)
	}

	s.logger.Info("GetUserPayments: successfully fetched %d of %d payments for user=%s",
		len(payments), total, req.UserID)

	resp := models.FromDomainPaymentList(payments)
	resp.Pagination = models.NewPagination(page, limit, total)
	return resp, nil
}

// getBookedReservation получает бронирование и проверяет, что платит его клиент
// и что бронирование еще в статусе BOOKED
func (s *Service) getBookedReservation(ctx context.Context, reservationID int64, userID, op string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, reservationID)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, reservationID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	// Платит только клиент бронирования
	if reservation.CustomerUserID != userID {
		s.logger.Warn("%s: access denied for user=%s to reservation id=%d", op, userID, reservationID)
		return nil, ErrAccessDenied
	}

	if reservation.Status != domain.StatusBooked {
		s.logger.Warn("%s: reservation id=%d is not payable, status=%s", op, reservationID, reservation.Status)
		return nil, fmt.Errorf("%w: reservation status is %s", ErrReservationNotActive, reservation.Status)
	}

	return reservation, nil
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
