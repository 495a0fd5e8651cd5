package resilience

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between consecutive external calls.
// Some free-tier providers cap requests per minute, so the floor applies
// regardless of how fast the previous call returned.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Wait sleeps the remainder of the interval since the previous call.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.interval <= 0 {
		return nil
	}

	p.mu.Lock()
	elapsed := p.now().Sub(p.lastCall)
	remaining := p.interval - elapsed
	p.mu.Unlock()

	if remaining > 0 {
		if err := p.sleep(ctx, remaining); err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.lastCall = p.now()
	p.mu.Unlock()
	return nil
}
