package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

func day(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func at(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 9, 15, hour, minute, 0, 0, time.UTC)
}

func TestBuildDaySlots_EmptyDay(t *testing.T) {
	slots := domain.BuildDaySlots(day(t), 9, 21, 60, nil)

	require.Len(t, slots, 12)
	assert.Equal(t, at(t, 9, 0), slots[0].Start)
	assert.Equal(t, at(t, 10, 0), slots[0].End)
	assert.Equal(t, at(t, 20, 0), slots[11].Start)
	assert.Equal(t, at(t, 21, 0), slots[11].End)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestBuildDaySlots_ReservationBlocksBucket(t *testing.T) {
	reservations := []*domain.Reservation{
		{
			Status:         domain.StatusBooked,
			ScheduledStart: at(t, 10, 0),
			ScheduledEnd:   at(t, 11, 0),
		},
	}

	slots := domain.BuildDaySlots(day(t), 9, 21, 60, reservations)

	require.Len(t, slots, 12)
	assert.True(t, slots[0].Available, "09:00-10:00")
	assert.False(t, slots[1].Available, "10:00-11:00")
	// Полуоткрытые интервалы: слот, начинающийся в момент окончания брони, свободен
	assert.True(t, slots[2].Available, "11:00-12:00")
}

func TestBuildDaySlots_CanceledReservationFreesSlot(t *testing.T) {
	reservations := []*domain.Reservation{
		{
			Status:         domain.StatusCanceled,
			ScheduledStart: at(t, 10, 0),
			ScheduledEnd:   at(t, 11, 0),
		},
		{
			Status:         domain.StatusNoShow,
			ScheduledStart: at(t, 12, 0),
			ScheduledEnd:   at(t, 13, 0),
		},
	}

	slots := domain.BuildDaySlots(day(t), 9, 21, 60, reservations)

	for _, s := range slots {
		assert.True(t, s.Available, "slot %s", s.Start.Format("15:04"))
	}
}

func TestBuildDaySlots_PartialOverlapBlocksBothBuckets(t *testing.T) {
	// Бронь 10:30-11:30 пересекает слоты 10:00-11:00 и 11:00-12:00
	reservations := []*domain.Reservation{
		{
			Status:         domain.StatusBooked,
			ScheduledStart: at(t, 10, 30),
			ScheduledEnd:   at(t, 11, 30),
		},
	}

	slots := domain.BuildDaySlots(day(t), 9, 21, 60, reservations)

	assert.True(t, slots[0].Available)
	assert.False(t, slots[1].Available)
	assert.False(t, slots[2].Available)
	assert.True(t, slots[3].Available)
}

func TestBuildDaySlots_LastBucketFitsExactly(t *testing.T) {
	// 90-минутные слоты в окне 09:00-21:00: последний начинается в 19:30
	slots := domain.BuildDaySlots(day(t), 9, 21, 90, nil)

	require.Len(t, slots, 8)
	assert.Equal(t, at(t, 19, 30), slots[7].Start)
	assert.Equal(t, at(t, 21, 0), slots[7].End)
}

func TestBuildDaySlots_InvalidDuration(t *testing.T) {
	assert.Empty(t, domain.BuildDaySlots(day(t), 9, 21, 0, nil))
	assert.Empty(t, domain.BuildDaySlots(day(t), 9, 21, -30, nil))
}

func TestReservationOverlaps_HalfOpen(t *testing.T) {
	r := &domain.Reservation{
		ScheduledStart: at(t, 10, 0),
		ScheduledEnd:   at(t, 11, 0),
	}

	assert.True(t, r.Overlaps(at(t, 10, 0), at(t, 11, 0)))
	assert.True(t, r.Overlaps(at(t, 10, 30), at(t, 11, 30)))
	assert.True(t, r.Overlaps(at(t, 9, 30), at(t, 10, 30)))

	// Смежные интервалы не пересекаются
	assert.False(t, r.Overlaps(at(t, 9, 0), at(t, 10, 0)))
	assert.False(t, r.Overlaps(at(t, 11, 0), at(t, 12, 0)))
}

func TestReservationStatusChecks(t *testing.T) {
	cases := []struct {
		status   domain.ReservationStatus
		active   bool
		terminal bool
	}{
		{domain.StatusBooked, true, false},
		{domain.StatusCompleted, true, true},
		{domain.StatusCanceled, false, true},
		{domain.StatusNoShow, false, true},
	}

	for _, tc := range cases {
		r := &domain.Reservation{Status: tc.status}
		assert.Equal(t, tc.active, r.IsActive(), "IsActive %s", tc.status)
		assert.Equal(t, tc.terminal, r.IsTerminal(), "IsTerminal %s", tc.status)
	}
}

func TestUserRoles(t *testing.T) {
	u := &domain.User{Roles: []domain.Role{domain.RoleCustomer, domain.RoleAdmin}}
	assert.True(t, u.HasRole(domain.RoleCustomer))
	assert.True(t, u.IsAdmin())

	customer := &domain.User{Roles: []domain.Role{domain.RoleCustomer}}
	assert.False(t, customer.IsAdmin())
	assert.False(t, customer.HasRole(domain.RoleOwner))
}
