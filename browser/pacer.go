package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/bookbay/config"
)

// Pacer spaces network-visible actions like a human would. A token
// bucket enforces the configured minimum interval as a hard floor, and a
// random jitter up to the max bound is layered on top so the spacing
// never looks mechanical.
type Pacer struct {
	limiter *rate.Limiter
	jitter  time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPacer builds a pacer for the given delay bounds. A zero or inverted
// range degrades to the floor alone.
func NewPacer(cfg config.PacingConfig) *Pacer {
	min := cfg.MinDelay
	if min <= 0 {
		min = time.Second
	}
	jitter := cfg.MaxDelay - min
	if jitter < 0 {
		jitter = 0
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(min), 1),
		jitter:  jitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for the inter-request delay. It returns early only when
// the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	extra := p.randomJitter()
	if extra <= 0 {
		return nil
	}
	timer := time.NewTimer(extra)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pacer) randomJitter() time.Duration {
	if p.jitter <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(p.rng.Int63n(int64(p.jitter)))
}
