package notify

import (
	"context"
	"time"
)

// Sweeper periodically evicts expired history from an index. The index owns
// no timer itself; callers decide whether and how often to sweep.
type Sweeper struct {
	index     *Index
	retention time.Duration
	interval  time.Duration
}

// NewSweeper creates a sweeper. Non-positive values fall back to
// DefaultRetention and a ten minute interval.
func NewSweeper(index *Index, retention, interval time.Duration) *Sweeper {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{index: index, retention: retention, interval: interval}
}

// Sweep runs one eviction pass.
func (s *Sweeper) Sweep() int {
	return s.index.FlushOldHistorical(s.retention)
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
