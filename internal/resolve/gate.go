package resolve

import (
	"context"
	"time"

	"github.com/sells-group/storegeo/internal/clock"
)

// Gate enforces a minimum idle interval between the end of one external
// request and the start of the next. It is safe for concurrent use: a
// caller holds the gate from a successful Wait until its Release.
type Gate struct {
	clock    clock.Clock
	interval time.Duration
	sem      chan struct{}

	// Guarded by sem.
	last     time.Time
	released bool
}

// NewGate returns a Gate spacing requests by interval. A nil clock uses
// the real clock. A non-positive interval never blocks.
func NewGate(interval time.Duration, clk clock.Clock) *Gate {
	if clk == nil {
		clk = clock.Real()
	}
	return &Gate{
		clock:    clk,
		interval: interval,
		sem:      make(chan struct{}, 1),
	}
}

// Interval returns the configured minimum idle interval.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Wait blocks until the gate is free and interval has elapsed since the
// last Release. The first request is not delayed. Every successful Wait
// must be paired with one Release.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if !g.released || g.interval <= 0 {
		return nil
	}
	remaining := g.interval - g.clock.Now().Sub(g.last)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-g.clock.After(remaining):
		return nil
	case <-ctx.Done():
		<-g.sem
		return ctx.Err()
	}
}

// Release marks the end of the current request and frees the gate.
func (g *Gate) Release() {
	g.last = g.clock.Now()
	g.released = true
	<-g.sem
}
