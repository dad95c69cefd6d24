package get_available_slots_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/internal/infra/cache"
	venueRepo "github.com/noshow-me/NSP-ReservationService/internal/infra/storage/venue"
	"github.com/noshow-me/NSP-ReservationService/internal/usecase/get_available_slots"
)

type fakeReservationRepo struct {
	findOverlappingFn func(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error)
	calls             int
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, serviceID int64, start, end time.Time) ([]*domain.Reservation, error) {
	f.calls++
	return f.findOverlappingFn(ctx, serviceID, start, end)
}

type fakeVenueRepo struct {
	getServiceWithVenueFn func(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error)
}

func (f *fakeVenueRepo) GetServiceWithVenue(ctx context.Context, serviceID int64) (*domain.VenueService, *domain.Venue, error) {
	return f.getServiceWithVenueFn(ctx, serviceID)
}

type fakeCache struct {
	getFn  func(ctx context.Context, serviceID int64, day time.Time) ([]domain.Slot, error)
	stored []domain.Slot
	setErr error
}

func (f *fakeCache) GetDaySlots(ctx context.Context, serviceID int64, day time.Time) ([]domain.Slot, error) {
	if f.getFn != nil {
		return f.getFn(ctx, serviceID, day)
	}
	return nil, cache.ErrCacheMiss
}

func (f *fakeCache) SetDaySlots(_ context.Context, _ int64, _ time.Time, slots []domain.Slot) error {
	f.stored = slots
	return f.setErr
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func serviceWithVenue() (*domain.VenueService, *domain.Venue) {
	return &domain.VenueService{
			ServiceID:       42,
			VenueID:         7,
			Price:           decimal.NewFromInt(10000),
			DurationMinutes: 60,
			IsActive:        true,
		}, &domain.Venue{
			VenueID:  7,
			IsActive: true,
		}
}

func futureDay() time.Time {
	d := time.Now().AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func TestExecute_CacheMissBuildsAndStoresGrid(t *testing.T) {
	day := futureDay()

	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, start, end time.Time) ([]*domain.Reservation, error) {
			// Запрос покрывает рабочее окно дня целиком
			assert.Equal(t, domain.DefaultOpenHour, start.Hour())
			assert.Equal(t, domain.DefaultCloseHour, end.Hour())
			return []*domain.Reservation{
				{
					Status:         domain.StatusBooked,
					ScheduledStart: day.Add(10 * time.Hour),
					ScheduledEnd:   day.Add(11 * time.Hour),
				},
			}, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			s, v := serviceWithVenue()
			return s, v, nil
		},
	}
	c := &fakeCache{}

	uc := get_available_slots.NewUseCase(resRepo, vRepo, c, noopLogger{})

	resp, err := uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 42, Date: day})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 12)
	assert.Equal(t, int64(7), resp.VenueID)
	assert.True(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available, "10:00-11:00 занят")
	assert.True(t, resp.Slots[2].Available)

	// Сетка записана в кеш
	assert.Len(t, c.stored, 12)
}

func TestExecute_CacheHitSkipsRepository(t *testing.T) {
	day := futureDay()
	cached := []domain.Slot{
		{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour), Available: false},
	}

	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			s, v := serviceWithVenue()
			return s, v, nil
		},
	}
	c := &fakeCache{
		getFn: func(_ context.Context, _ int64, _ time.Time) ([]domain.Slot, error) {
			return cached, nil
		},
	}

	uc := get_available_slots.NewUseCase(resRepo, vRepo, c, noopLogger{})

	resp, err := uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 42, Date: day})
	require.NoError(t, err)

	require.Len(t, resp.Slots, 1)
	assert.False(t, resp.Slots[0].Available)
	assert.Zero(t, resRepo.calls, "cache hit must not query the repository")
}

func TestExecute_CacheErrorFallsBackToRepository(t *testing.T) {
	resRepo := &fakeReservationRepo{
		findOverlappingFn: func(_ context.Context, _ int64, _, _ time.Time) ([]*domain.Reservation, error) {
			return nil, nil
		},
	}
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			s, v := serviceWithVenue()
			return s, v, nil
		},
	}
	c := &fakeCache{
		getFn: func(_ context.Context, _ int64, _ time.Time) ([]domain.Slot, error) {
			return nil, errors.New("redis: connection refused")
		},
		setErr: errors.New("redis: connection refused"),
	}

	uc := get_available_slots.NewUseCase(resRepo, vRepo, c, noopLogger{})

	resp, err := uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 42, Date: futureDay()})
	require.NoError(t, err)

	assert.Len(t, resp.Slots, 12)
	assert.Equal(t, 1, resRepo.calls)
}

func TestExecute_PastDateRejected(t *testing.T) {
	uc := get_available_slots.NewUseCase(&fakeReservationRepo{}, &fakeVenueRepo{}, &fakeCache{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &get_available_slots.Request{
		ServiceID: 42,
		Date:      time.Now().AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, get_available_slots.ErrInvalidDate)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	vRepo := &fakeVenueRepo{
		getServiceWithVenueFn: func(_ context.Context, _ int64) (*domain.VenueService, *domain.Venue, error) {
			return nil, nil, venueRepo.ErrServiceNotFound
		},
	}

	uc := get_available_slots.NewUseCase(&fakeReservationRepo{}, vRepo, &fakeCache{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 999, Date: futureDay()})
	assert.ErrorIs(t, err, get_available_slots.ErrServiceNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := get_available_slots.NewUseCase(&fakeReservationRepo{}, &fakeVenueRepo{}, &fakeCache{}, noopLogger{})

	_, err := uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 0, Date: futureDay()})
	assert.ErrorIs(t, err, get_available_slots.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &get_available_slots.Request{ServiceID: 42})
	assert.ErrorIs(t, err, get_available_slots.ErrInvalidInput)
}
