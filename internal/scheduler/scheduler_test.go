package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_StartsImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	s := New(time.Hour, func(context.Context) { ran <- struct{}{} }, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("pass did not run at startup")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_Repeats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int32
	s := New(5*time.Millisecond, func(context.Context) { n.Add(1) }, nil)
	go s.Run(ctx)

	require.Eventually(t, func() bool { return n.Load() >= 3 }, 2*time.Second, time.Millisecond)
}

func TestRun_NeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var running, overlaps, passes atomic.Int32
	s := New(time.Millisecond, func(context.Context) {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		passes.Add(1)
	}, nil)
	go s.Run(ctx)

	require.Eventually(t, func() bool { return passes.Load() >= 3 }, 2*time.Second, time.Millisecond)
	assert.Zero(t, overlaps.Load())
}

func TestTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int32
	s := New(time.Hour, func(context.Context) { n.Add(1) }, nil)
	go s.Run(ctx)

	require.Eventually(t, func() bool { return n.Load() == 1 }, 2*time.Second, time.Millisecond)
	s.Trigger()
	require.Eventually(t, func() bool { return n.Load() == 2 }, 2*time.Second, time.Millisecond)
}

func TestTrigger_Merges(t *testing.T) {
	s := New(time.Hour, func(context.Context) {}, nil)
	s.Trigger()
	s.Trigger()
	assert.Len(t, s.trigger, 1)
}

func TestRun_NoPassAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var n atomic.Int32
	s := New(time.Millisecond, func(context.Context) { n.Add(1) }, nil)
	s.Trigger()
	time.Sleep(5 * time.Millisecond)

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n.Load())
}
