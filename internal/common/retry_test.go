package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/service"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		wantErr      error
		failures     []error
		name         string
		wantAttempts int
	}{
		{name: "succeeds first try", wantAttempts: 1},
		{name: "succeeds after transient failures", failures: []error{errBoom, errBoom}, wantAttempts: 3},
		{name: "gives up after max attempts", failures: []error{errBoom, errBoom, errBoom}, wantAttempts: 3, wantErr: ErrMaxRetries},
		{name: "stops on permanent error", failures: []error{Permanent(errBoom)}, wantAttempts: 1, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := WithRetry(context.Background(), func() error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			}, fastRetry)

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_WrapsLastFailure(t *testing.T) {
	errTimeout := errors.New("upstream timeout")
	err := WithRetry(context.Background(), func() error { return errTimeout }, fastRetry)

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, errTimeout)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastRetry
	opts.InitialDelay = time.Hour
	opts.MaxDelay = time.Hour
	err := WithRetry(ctx, func() error { return errors.New("nope") }, opts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(Permanent(errors.New("x"))))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	err := NewUserError("Couldn't save that expense", ErrPersistence)
	assert.Equal(t, "Couldn't save that expense", UserMessage(err, "fallback"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "fallback", UserMessage(errors.New("raw"), "fallback"))
}
