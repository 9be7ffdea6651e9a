package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 5, 14, 9, 30, 0, 0, time.UTC)

func newTestScheduler(t *testing.T) (*Scheduler, *FakeClock, *Metrics) {
	t.Helper()
	clock := NewFakeClock(epoch)
	metrics := MustNewMetrics(prometheus.NewRegistry())
	s := New("test", Options{Clock: clock, Metrics: metrics, JobTimeout: time.Second})
	t.Cleanup(s.Shutdown)
	return s, clock, metrics
}

func counter(calls *int32) JobFunc {
	return func(ctx context.Context) error {
		atomic.AddInt32(calls, 1)
		return nil
	}
}

func TestScheduleFiresAtDeadline(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var calls int32
	var firedAt time.Time

	ok := s.Schedule("a", epoch.Add(time.Hour), func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		firedAt = clock.Now()
		return nil
	})
	require.True(t, ok)
	assert.True(t, s.Has("a"))

	clock.Advance(59 * time.Minute)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	clock.Advance(time.Minute)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, epoch.Add(time.Hour), firedAt)
	assert.False(t, s.Has("a"))
	assert.Equal(t, 0, s.Pending())
}

func TestScheduleRejectsPastAndPresent(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	var calls int32

	assert.False(t, s.Schedule("past", epoch.Add(-time.Second), counter(&calls)))
	assert.False(t, s.Schedule("now", epoch, counter(&calls)))
	assert.Equal(t, 0, s.Pending())
}

func TestScheduleTwiceFiresOnce(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var calls int32
	at := epoch.Add(10 * time.Minute)

	require.True(t, s.Schedule("a", at, counter(&calls)))
	require.True(t, s.Schedule("a", at, counter(&calls)))
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 1, clock.PendingTimers())

	clock.Advance(time.Hour)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRescheduleSupersedesEarlierDeadline(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var first, second int32

	s.Schedule("a", epoch.Add(time.Minute), counter(&first))
	s.Schedule("a", epoch.Add(time.Hour), counter(&second))

	clock.Advance(30 * time.Minute)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.True(t, s.Has("a"))

	deadline, ok := s.Deadline("a")
	require.True(t, ok)
	assert.Equal(t, epoch.Add(time.Hour), deadline)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestSchedulePastDropsExistingJob(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var calls int32

	s.Schedule("a", epoch.Add(time.Hour), counter(&calls))
	assert.False(t, s.Schedule("a", epoch.Add(-time.Hour), counter(&calls)))
	assert.False(t, s.Has("a"))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCancel(t *testing.T) {
	s, clock, metrics := newTestScheduler(t)
	var calls int32

	s.Schedule("a", epoch.Add(time.Hour), counter(&calls))
	assert.True(t, s.Cancel("a"))
	assert.False(t, s.Cancel("a"))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cancelled.WithLabelValues("test")))
}

func TestCancelAll(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var calls int32

	for _, id := range []string{"a", "b", "c"} {
		s.Schedule(id, epoch.Add(time.Hour), counter(&calls))
	}
	assert.Equal(t, 3, s.CancelAll())
	assert.Equal(t, 0, s.Pending())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFailingJobIsCleanedUp(t *testing.T) {
	s, clock, metrics := newTestScheduler(t)

	s.Schedule("err", epoch.Add(time.Minute), func(ctx context.Context) error {
		return errors.New("store unavailable")
	})
	s.Schedule("panic", epoch.Add(2*time.Minute), func(ctx context.Context) error {
		panic("boom")
	})
	var later int32
	s.Schedule("later", epoch.Add(3*time.Minute), counter(&later))

	clock.Advance(time.Hour)

	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, int32(1), atomic.LoadInt32(&later))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.outcomes.WithLabelValues("test", OutcomeFailed)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.outcomes.WithLabelValues("test", OutcomeDone)))
}

func TestJobMayRescheduleItself(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var calls int32

	var body JobFunc
	body = func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			s.Schedule("a", clock.Now().Add(time.Hour), body)
		}
		return nil
	}
	s.Schedule("a", epoch.Add(time.Hour), body)

	clock.Advance(time.Hour)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, s.Has("a"), "rescheduled job must survive cleanup of the fired one")

	clock.Advance(time.Hour)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.False(t, s.Has("a"))
}

func TestJobContextHasTimeout(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var hasDeadline bool

	s.Schedule("a", epoch.Add(time.Minute), func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	clock.Advance(time.Minute)
	assert.True(t, hasDeadline)
}

func TestJobsFireInDeadlineOrder(t *testing.T) {
	s, clock, _ := newTestScheduler(t)
	var order []string

	record := func(id string) JobFunc {
		return func(ctx context.Context) error {
			order = append(order, id)
			return nil
		}
	}
	s.Schedule("c", epoch.Add(3*time.Minute), record("c"))
	s.Schedule("a", epoch.Add(1*time.Minute), record("a"))
	s.Schedule("b", epoch.Add(2*time.Minute), record("b"))

	clock.Advance(time.Hour)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRealClockFires(t *testing.T) {
	s := New("real", Options{})
	defer s.Shutdown()

	done := make(chan struct{})
	require.True(t, s.Schedule("a", time.Now().Add(10*time.Millisecond), func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 5*time.Millisecond)
}
