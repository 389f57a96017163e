package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetry() *Retry {
	return NewRetry(&RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
	}, testLogger())
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	conflict := NewError(ErrWriteConflict, "conflict", nil)

	attempts := 0
	err := testRetry().Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return conflict
		}
		return nil
	}, func(err error) bool { return IsCode(err, ErrWriteConflict) })

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("permanent")

	attempts := 0
	err := testRetry().Execute(context.Background(), func() error {
		attempts++
		return permanent
	}, func(err error) bool { return false })

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	conflict := NewError(ErrWriteConflict, "conflict", nil)

	attempts := 0
	err := testRetry().Execute(context.Background(), func() error {
		attempts++
		return conflict
	}, func(err error) bool { return true })

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.True(t, IsCode(err, ErrWriteConflict))
}
