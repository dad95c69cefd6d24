package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
	"github.com/noshow-me/NSP-ReservationService/internal/infra/cache"
)

const dayKey = "availability:service:42:day:2026-09-15"

func testDay() time.Time {
	return time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
}

func testSlots(t *testing.T) []domain.Slot {
	t.Helper()
	day := testDay()
	return []domain.Slot{
		{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour), Available: true},
		{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour), Available: false},
	}
}

func TestGetDaySlots_Hit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	slots := testSlots(t)
	data, err := json.Marshal(slots)
	require.NoError(t, err)

	mock.ExpectGet(dayKey).SetVal(string(data))

	got, err := c.GetDaySlots(context.Background(), 42, testDay())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.True(t, got[0].Available)
	assert.False(t, got[1].Available)
	assert.True(t, got[0].Start.Equal(slots[0].Start))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDaySlots_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	mock.ExpectGet(dayKey).RedisNil()

	_, err := c.GetDaySlots(context.Background(), 42, testDay())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDaySlots_CorruptValueTreatedAsMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	mock.ExpectGet(dayKey).SetVal("{not json")

	_, err := c.GetDaySlots(context.Background(), 42, testDay())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestGetDaySlots_RedisErrorIsNotMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	mock.ExpectGet(dayKey).SetErr(errors.New("connection refused"))

	_, err := c.GetDaySlots(context.Background(), 42, testDay())
	require.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrCacheMiss)
}

func TestSetDaySlots(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	slots := testSlots(t)
	data, err := json.Marshal(slots)
	require.NoError(t, err)

	mock.ExpectSet(dayKey, data, time.Minute).SetVal("OK")

	require.NoError(t, c.SetDaySlots(context.Background(), 42, testDay(), slots))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateDay(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	mock.ExpectDel(dayKey).SetVal(1)

	require.NoError(t, c.InvalidateDay(context.Background(), 42, testDay()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateDay_NormalizesKeyToUTCDate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := cache.NewRedisAvailabilityCache(client, time.Minute)

	// 2026-09-15 01:00 KST — это еще 2026-09-14 по UTC; инвалидация должна
	// удалить тот же ключ, под которым сетка была сохранена
	kst := time.FixedZone("KST", 9*3600)
	localStart := time.Date(2026, 9, 15, 1, 0, 0, 0, kst)

	mock.ExpectDel("availability:service:42:day:2026-09-14").SetVal(1)

	require.NoError(t, c.InvalidateDay(context.Background(), 42, localStart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoopCache(t *testing.T) {
	c := cache.NewNoopAvailabilityCache()

	_, err := c.GetDaySlots(context.Background(), 42, testDay())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	assert.NoError(t, c.SetDaySlots(context.Background(), 42, testDay(), nil))
	assert.NoError(t, c.InvalidateDay(context.Background(), 42, testDay()))
}
