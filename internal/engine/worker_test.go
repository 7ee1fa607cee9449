package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/csgstat/pkg/csg"
)

func TestWorkerPublishesOnSuccess(t *testing.T) {
	t.Parallel()

	w := NewWorker(newTestEngine(seededMock()))

	_, _, ok := w.Latest()
	assert.False(t, ok, "nothing published before the first cycle")

	snaps, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	latest, at, ok := w.Latest()
	require.True(t, ok)
	assert.Equal(t, snaps, latest)
	assert.WithinDuration(t, time.Now(), at, time.Minute)

	stats := w.Stats()
	assert.Equal(t, 1, stats.CyclesTotal)
	assert.Equal(t, 0, stats.CyclesFailed)
	assert.False(t, stats.LastSuccess.IsZero())
}

func TestWorkerRetainsLastGoodSnapshotAcrossFailures(t *testing.T) {
	t.Parallel()

	m := seededMock()
	w := NewWorker(newTestEngine(m))

	good, err := w.RunOnce(context.Background())
	require.NoError(t, err)

	// Session dies; the cycle fails but the published data stays.
	m.loginValid = false
	_, err = w.RunOnce(context.Background())
	require.Error(t, err)

	latest, _, ok := w.Latest()
	require.True(t, ok)
	assert.Equal(t, good, latest)

	stats := w.Stats()
	assert.Equal(t, 2, stats.CyclesTotal)
	assert.Equal(t, 1, stats.CyclesFailed)
	assert.Equal(t, 1, stats.ConsecutiveFailures)
	assert.Equal(t, FailureSessionInvalid, stats.LastFailureKind)
	assert.NotEmpty(t, stats.LastFailureReason)

	// Recovery resets the consecutive counter.
	m.loginValid = true
	_, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, w.Stats().ConsecutiveFailures)
}

func TestWorkerTriggerCoalesces(t *testing.T) {
	t.Parallel()

	w := NewWorker(newTestEngine(seededMock()))

	// Multiple triggers while no loop is draining must neither block nor
	// queue more than one pending run.
	for i := 0; i < 5; i++ {
		w.Trigger()
	}
	assert.Len(t, w.trigger, 1)

	w.SetInterval(time.Minute)
	w.SetInterval(30 * time.Second)
	assert.Len(t, w.interval, 1)
}

func TestWorkerRunLoop(t *testing.T) {
	t.Parallel()

	m := seededMock()
	w := NewWorker(newTestEngine(m))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, time.Hour) }()

	// The loop runs one cycle immediately.
	require.Eventually(t, func() bool {
		_, _, ok := w.Latest()
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// An on-demand trigger runs another without waiting for the tick.
	w.Trigger()
	require.Eventually(t, func() bool {
		return w.Stats().CyclesTotal >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

var _ csg.Client = (*mockClient)(nil)
