package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sajilo_backend/internal/logger"
)

// JobFunc is the body of a deferred job. It must re-read whatever state it acts on.
type JobFunc func(ctx context.Context) error

// Job outcomes reported to metrics.
const (
	OutcomeDone       = "done"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Options configure a Scheduler.
type Options struct {
	Clock   Clock
	Metrics *Metrics
	// JobTimeout bounds each job body. Zero means no timeout.
	JobTimeout time.Duration
}

// Scheduler keeps at most one pending one-shot job per id. It holds no durable
// state: everything it knows can be rebuilt from the store by the owning worker.
type Scheduler struct {
	name    string
	clock   Clock
	metrics *Metrics
	timeout time.Duration

	baseCtx context.Context
	stop    context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]*job
	running sync.WaitGroup
}

type job struct {
	id    string
	at    time.Time
	fn    JobFunc
	timer Timer
}

func New(name string, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		name:    name,
		clock:   clock,
		metrics: opts.Metrics,
		timeout: opts.JobTimeout,
		baseCtx: ctx,
		stop:    cancel,
		jobs:    make(map[string]*job),
	}
}

func (s *Scheduler) Name() string {
	return s.name
}

func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule registers fn to run at the given instant for id, replacing any pending
// job for the same id. It returns false, leaving no job behind, when at is not in the future.
func (s *Scheduler) Schedule(id string, at time.Time, fn JobFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelLocked(id) {
		s.metrics.incCancelled(s.name, 1)
	}

	now := s.clock.Now()
	if !at.After(now) {
		s.metrics.setPending(s.name, len(s.jobs))
		return false
	}

	j := &job{id: id, at: at, fn: fn}
	j.timer = s.clock.AfterFunc(at.Sub(now), func() { s.fire(j) })
	s.jobs[id] = j

	s.metrics.incScheduled(s.name)
	s.metrics.setPending(s.name, len(s.jobs))
	logger.JobLog(s.name, "scheduled", id, nil)
	return true
}

// Cancel drops the pending job for id. It reports whether one existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.cancelLocked(id)
	if ok {
		s.metrics.incCancelled(s.name, 1)
		s.metrics.setPending(s.name, len(s.jobs))
		logger.JobLog(s.name, "cancelled", id, nil)
	}
	return ok
}

// CancelAll drops every pending job and returns how many there were.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.jobs)
	for id, j := range s.jobs {
		j.timer.Stop()
		delete(s.jobs, id)
	}
	s.metrics.incCancelled(s.name, n)
	s.metrics.setPending(s.name, 0)
	return n
}

func (s *Scheduler) cancelLocked(id string) bool {
	j, ok := s.jobs[id]
	if !ok {
		return false
	}
	j.timer.Stop()
	delete(s.jobs, id)
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

// Deadline returns the instant the pending job for id will fire.
func (s *Scheduler) Deadline(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return time.Time{}, false
	}
	return j.at, true
}

// Shutdown cancels pending jobs, cancels the context of running ones and waits for them.
func (s *Scheduler) Shutdown() {
	s.CancelAll()
	s.stop()
	s.running.Wait()
}

func (s *Scheduler) fire(j *job) {
	s.mu.Lock()
	if s.jobs[j.id] != j {
		s.mu.Unlock()
		s.metrics.incOutcome(s.name, OutcomeSuperseded)
		logger.JobLog(s.name, "superseded", j.id, nil)
		return
	}
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	defer func() {
		s.mu.Lock()
		if s.jobs[j.id] == j {
			delete(s.jobs, j.id)
		}
		s.metrics.setPending(s.name, len(s.jobs))
		s.mu.Unlock()
	}()

	err := s.run(j)
	if err != nil {
		s.metrics.incOutcome(s.name, OutcomeFailed)
	} else {
		s.metrics.incOutcome(s.name, OutcomeDone)
	}
	logger.JobLog(s.name, "fired", j.id, err)
}

func (s *Scheduler) run(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	ctx := s.baseCtx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return j.fn(ctx)
}
