package simpletxmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noshow-me/NSP-ReservationService/pkg/dbmetrics"
)

type stubTx struct{}

func (stubTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (stubTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (stubTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (stubTx) Commit() error                                                    { return nil }
func (stubTx) Rollback() error                                                  { return nil }

func TestIsRetryable_SeesWrappedDriverError(t *testing.T) {
	wrapped := fmt.Errorf("payments: RecordDeposit - exec query: %w", &pq.Error{Code: "40001"})
	assert.True(t, isRetryable(wrapped))

	deadlock := fmt.Errorf("%w: commit: %w", ErrTransaction, &pq.Error{Code: "40P01"})
	assert.True(t, isRetryable(deadlock))

	assert.False(t, isRetryable(errors.New("slot already booked")))
	assert.False(t, isRetryable(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
}

func TestRun_ReusesAmbientTransaction(t *testing.T) {
	mgr := NewTransactionManager(nil, 0)

	ctx := dbmetrics.WithTx(context.Background(), stubTx{})

	calls := 0
	err := mgr.Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
