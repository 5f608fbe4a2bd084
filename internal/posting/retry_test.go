package posting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(serializationFailure()))
	require.True(t, IsTransient(&pgconn.PgError{Code: "40P01"}))
	require.True(t, IsTransient(&pgconn.PgError{Code: "55P03"}))
	require.True(t, IsTransient(&pgconn.PgError{Code: "08006"}))
	require.True(t, IsTransient(fmt.Errorf("posting sale: %w", serializationFailure())))

	require.False(t, IsTransient(nil))
	require.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsTransient(ErrInvalidState))
	require.False(t, IsTransient(context.Canceled))
	require.False(t, IsTransient(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryStopsOnBusinessError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		return ErrEmptyDocument
	})
	require.ErrorIs(t, err, ErrEmptyDocument)
	require.Equal(t, 1, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return serializationFailure()
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 10, 50*time.Millisecond, func(context.Context) error {
		calls++
		cancel()
		return serializationFailure()
	})
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 1, calls)
}
