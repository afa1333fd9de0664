package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithMaxRetries(3), WithInitialDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	wantErr := errors.New("always fails")
	err := Do(context.Background(), func() error {
		calls++
		return wantErr
	}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

	assert.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls) // 首次执行 + 2 次重试
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	wantErr := NewError(ErrCodeGitHubAuth, "GH_TOKEN 无效")
	err := Do(context.Background(), func() error {
		calls++
		return Permanent(wantErr)
	}, WithMaxRetries(5), WithInitialDelay(time.Millisecond))

	assert.Equal(t, 1, calls)
	// Permanent 解包后应保留原始错误，便于上层按错误码分流
	assert.True(t, HasCode(err, ErrCodeGitHubAuth))
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, func() error {
		calls++
		return errors.New("transient")
	}, WithMaxRetries(3), WithInitialDelay(time.Second))

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "第一次重试", attempt: 1, expected: time.Second},
		{name: "第二次重试", attempt: 2, expected: 2 * time.Second},
		{name: "第三次重试", attempt: 3, expected: 4 * time.Second},
		{name: "超过上限被截断", attempt: 10, expected: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateDelay(tt.attempt, time.Second, 30*time.Second, 2.0)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPermanent_Nil(t *testing.T) {
	assert.Nil(t, Permanent(nil))
}
