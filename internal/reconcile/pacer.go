package reconcile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Pacer holds a fixed delay after each remote write. The delay is measured
// from the end of the previous write, so a slow store is never written to
// back to back. The first write goes through immediately.
type Pacer struct {
	delay time.Duration
	last  time.Time
	now   func() time.Time
}

// NewPacer returns a Pacer that keeps delay between writes. A non-positive
// delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, now: time.Now}
}

// Wait blocks until delay has passed since the last write finished.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.delay <= 0 || p.last.IsZero() {
		return nil
	}
	remaining := p.delay - p.now().Sub(p.last)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "reconcile: pace write")
	case <-timer.C:
		return nil
	}
}

// Done records that a write finished, successfully or not.
func (p *Pacer) Done() {
	if p == nil || p.delay <= 0 {
		return
	}
	p.last = p.now()
}

// write runs one paced write attempt.
func write[T any](ctx context.Context, p *Pacer, fn func(context.Context) (T, error)) (T, error) {
	if err := p.Wait(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer p.Done()
	return fn(ctx)
}
