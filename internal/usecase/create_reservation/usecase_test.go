package create_reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	reservationRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/reservation"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
	"github.com/noshow-me/NSP-ReservationService/internal/usecase/create_reservation"
)

type fakeReservationRepo struct {
	createFn          func(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	findOverlappingFn func(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error)
}

func (f *fakeReservationRepo) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	return f.createFn(ctx, r)
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error) {
	return f.findOverlappingFn(ctx, serviceID, start, end)
}

type fakeVenueRepo struct {
	getServiceWithVenueFn func(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error)
}

func (f *fakeVenueRepo) GetServiceWithVenue(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error) {
	return f.getServiceWithVenueFn(ctx, serviceID)
}

type fakeUserRepo struct {
	getByIDFn func(ctx context.Context, userID string) (*domain.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return f.getByIDFn(ctx, userID)
}

type fakeCache struct {
	invalidated []time.Time
	err         error
}

func (f *fakeCache) InvalidateDay(_ context.Context, _ int64, day time.Time) error {
	f.invalidated = append(f.invalidated, day)
	return f.err
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func activeVenue() *domain.Venue {
	return &domain.Venue{
		VenueID:                   7,
		OwnerUserID:               "owner-1",
		VenueName:                 "Test Venue",
		DefaultDepositRatePercent: decimal.NewFromInt(30),
		Currency:                  "KRW",
		IsActive:                  true,
	}
}

func activeService() *domain.VenueService {
	return &domain.VenueService{
		ServiceID:       42,
		VenueID:         7,
		ServiceName:     "Dinner Course",
		Price:           decimal.NewFromInt(10000),
		DurationMinutes: 60,
		Capacity:        4,
		IsActive:        true,
	}
}

func activeCustomer() *domain.User {
	return &domain.User{
		UserID:   "customer-1",
		Email:    "customer@example.com",
		Roles:    []domain.Role{domain.RoleCustomer},
		IsActive: true,
		GradeID:  2,
		Grade: &domain.UserGrade{
			GradeID:                2,
			GradeCode:              "GOLD",
			DepositDiscountPercent: decimal.NewFromInt(10),
		},
	}
}

func validRequest() *create_reservation.Request {
	return &create_reservation.Request{
		CustomerUserID: "customer-1",
		ServiceID:      42,
		PartySize:      2,
		ScheduledStart: time.Now().Add(48 * time.Hour).Truncate(time.Hour),
	}
}

func TestExecute_Success(t *testing.T) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
			created := *r
			created.ID = 100
			created.BookedAt = time.Now()
			created.UpdatedAt = created.BookedAt
			return &created, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			return activeCustomer(), nil
		},
	}
	cache := &fakeCache{}

	uc := create_reservation.NewUseCase(resRepo, vRepo, uRepo, cache, &fakeTxManager{}, noopLogger{})

	req := validRequest()
	req.ScheduledStart = start

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, int64(100), resp.ID)
	assert.Equal(t, "BOOKED", resp.Status)
	assert.Equal(t, start.Add(time.Hour), resp.ScheduledEnd)

	// 10 000 * 2 = 20 000; ставка 30% - 10% = 20%; депозит 4 000, остаток 16 000
	assert.True(t, decimal.NewFromInt(20000).Equal(resp.TotalPriceAtBooking))
	assert.True(t, decimal.NewFromInt(20).Equal(resp.AppliedDepositRatePercent))
	assert.True(t, decimal.NewFromInt(10).Equal(resp.AppliedGradeDiscountPercent))
	assert.True(t, decimal.NewFromInt(4000).Equal(resp.DepositAmount))
	assert.True(t, decimal.NewFromInt(16000).Equal(resp.BalanceAmount))
	require.NotNil(t, resp.AppliedGradeID)
	assert.Equal(t, int64(2), *resp.AppliedGradeID)

	assert.Len(t, cache.invalidated, 1)
}

func TestExecute_MissingGradeAppliesZeroDiscount(t *testing.T) {
	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
			return r, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			customer := activeCustomer()
			customer.Grade = nil // grade_id ссылается на отсутствующую запись
			return customer, nil
		},
	}

	uc := create_reservation.NewUseCase(resRepo, vRepo, uRepo, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// Полная ставка без скидки, грейд в снимке отсутствует
	assert.True(t, decimal.NewFromInt(30).Equal(resp.AppliedDepositRatePercent))
	assert.True(t, decimal.NewFromInt(6000).Equal(resp.DepositAmount))
	assert.Nil(t, resp.AppliedGradeID)
}

func TestExecute_SlotTaken(t *testing.T) {
	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return []*domain.Reservation{{ID: 55, Status: domain.StatusBooked}}, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			return activeCustomer(), nil
		},
	}
	cache := &fakeCache{}

	uc := create_reservation.NewUseCase(resRepo, vRepo, uRepo, cache, &fakeTxManager{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrSlotTaken)
	assert.Nil(t, resp)
	assert.Empty(t, cache.invalidated)
}

func TestExecute_UniqueIndexRace(t *testing.T) {
	// Пересечений не видно, но индекс отклоняет вставку (параллельная транзакция)
	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, _ *domain.Reservation) (*domain.Reservation, error) {
			return nil, reservationRepo.ErrSlotTaken
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			return activeCustomer(), nil
		},
	}

	uc := create_reservation.NewUseCase(resRepo, vRepo, uRepo, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrSlotTaken)
}

func TestExecute_PastStart(t *testing.T) {
	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, &fakeVenueRepo{}, &fakeUserRepo{}, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	req := validRequest()
	req.ScheduledStart = time.Now().Add(-time.Hour)

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, create_reservation.ErrPastDate)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return nil, nil, venueRepo.ErrServiceNotFound
		},
	}

	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, vRepo, &fakeUserRepo{}, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrServiceNotFound)
}

func TestExecute_InactiveServiceRejected(t *testing.T) {
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			service := activeService()
			service.IsActive = false
			return service, activeVenue(), nil
		},
	}

	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, vRepo, &fakeUserRepo{}, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrServiceNotFound)
}

func TestExecute_UnbookableVenueRejected(t *testing.T) {
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			venue := activeVenue()
			venue.IsActive = false
			return activeService(), venue, nil
		},
	}

	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, vRepo, &fakeUserRepo{}, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrVenueNotFound)
}

func TestExecute_DeactivatedCustomerRejected(t *testing.T) {
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			customer := activeCustomer()
			customer.IsActive = false
			return customer, nil
		},
	}

	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, vRepo, uRepo, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, create_reservation.ErrCustomerNotFound)
}

func TestExecute_Validation(t *testing.T) {
	uc := create_reservation.NewUseCase(&fakeReservationRepo{}, &fakeVenueRepo{}, &fakeUserRepo{}, &fakeCache{}, &fakeTxManager{}, noopLogger{})

	cases := []struct {
		name   string
		mutate func(req *create_reservation.Request)
	}{
		{"empty customer", func(req *create_reservation.Request) { req.CustomerUserID = "" }},
		{"non-positive service", func(req *create_reservation.Request) { req.ServiceID = 0 }},
		{"zero party size", func(req *create_reservation.Request) { req.PartySize = 0 }},
		{"party size above limit", func(req *create_reservation.Request) { req.PartySize = domain.MaxPartySize + 1 }},
		{"zero start", func(req *create_reservation.Request) { req.ScheduledStart = time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, create_reservation.ErrInvalidInput)
		})
	}
}

func TestExecute_CacheFailureDoesNotFailRequest(t *testing.T) {
	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
		createFn: func(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
			return r, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return activeService(), activeVenue(), nil
		},
	}
	uRepo := &fakeUserRepo{
		getByIDFn: func(_ context.Context, _ string) (*domain.User, error) {
			return activeCustomer(), nil
		},
	}
	cache := &fakeCache{err: errors.New("redis: connection refused")}

	uc := create_reservation.NewUseCase(resRepo, vRepo, uRepo, cache, &fakeTxManager{}, noopLogger{})

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp)
}
