package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireEnded(context.Context) (int64, error) {
	e.calls.Add(1)
	return 1, e.err
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	expirer := &countingExpirer{}
	scheduler := NewScheduler(expirer, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = scheduler.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return expirer.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestSchedulerStopAndErrors(t *testing.T) {
	expirer := &countingExpirer{err: errors.New("db down")}
	scheduler := NewScheduler(expirer, time.Hour, zap.NewNop())

	done := make(chan struct{})
	go func() {
		_ = scheduler.Run(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return expirer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	scheduler.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
