package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(ctx context.Context) error {
	w.calls.Add(1)
	return w.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_WarmsOnStart(t *testing.T) {
	warmer := &countingWarmer{}
	s := New(config.RefreshConfig{Enabled: true, Interval: time.Hour}, warmer, nil, testLogger())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop(context.Background()) })

	require.Eventually(t, func() bool {
		last, _ := s.LastWarm()
		return !last.IsZero()
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), warmer.calls.Load())
}

func TestScheduler_RecordsFailure(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("upstream down")}
	s := New(config.RefreshConfig{Enabled: true, Interval: time.Hour}, warmer, nil, testLogger())

	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Stop(context.Background()) })

	require.Eventually(t, func() bool {
		_, err := s.LastWarm()
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_Disabled(t *testing.T) {
	warmer := &countingWarmer{}
	s := New(config.RefreshConfig{Enabled: false, Interval: time.Hour}, warmer, nil, testLogger())

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	assert.Zero(t, warmer.calls.Load())
}

func TestScheduler_SkipsOverlappingWarm(t *testing.T) {
	warmer := &countingWarmer{}
	s := New(config.RefreshConfig{Enabled: true, Interval: time.Hour}, warmer, nil, testLogger())
	s.ctx = context.Background()

	s.warming = true
	s.warm()
	assert.Zero(t, warmer.calls.Load())

	s.warming = false
	s.warm()
	assert.Equal(t, int32(1), warmer.calls.Load())
}
