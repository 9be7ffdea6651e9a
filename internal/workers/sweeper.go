package workers

import (
	"context"
	"time"

	"sajilo_backend/internal/logger"
)

// Sweeper periodically resolves overdue entities whose timers were lost,
// for example after the host was suspended past a deadline.
type Sweeper struct {
	registry *Registry
	interval time.Duration
}

func NewSweeper(registry *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{registry: registry, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("lifecycle sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass and returns how many entities were resolved.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.registry.ResolveOverdue(ctx)
	if err != nil {
		logger.WorkerLog("sweeper", "resolve_overdue", err)
	} else if n > 0 {
		logger.WorkerLog("sweeper", "resolve_overdue", nil, "resolved", n)
	}
	return n
}
