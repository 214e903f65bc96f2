package scheduler

import (
	"fmt"
	"sync"
	"time"
)

// Ticker is the engine operation driven by the passive ticker.
type Ticker interface {
	Tick(elapsedSeconds float64) error
}

// PassiveTicker converts wall-clock time into whole-interval engine ticks.
// Time that does not fill an interval is carried to the next call, so a run
// of irregular calls credits exactly what one long call would.
type PassiveTicker struct {
	engine   Ticker
	clock    Clock
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	acc  time.Duration
}

func NewPassiveTicker(engine Ticker, clock Clock, interval time.Duration) (*PassiveTicker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &PassiveTicker{
		engine:   engine,
		clock:    clock,
		interval: interval,
		last:     clock.Now(),
	}, nil
}

// Advance measures time since the previous call and forwards every whole
// interval to the engine. It returns the seconds credited. Time is kept in the
// accumulator when the engine rejects a tick. A clock that moved
// backwards credits nothing and resets the reference point.
func (p *PassiveTicker) Advance() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	delta := now.Sub(p.last)
	p.last = now
	if delta < 0 {
		return 0, nil
	}

	p.acc += delta
	ticks := p.acc / p.interval
	if ticks == 0 {
		return 0, nil
	}

	credit := ticks * p.interval
	if err := p.engine.Tick(credit.Seconds()); err != nil {
		return 0, fmt.Errorf("advance: %w", err)
	}
	p.acc -= credit
	return credit.Seconds(), nil
}

// CatchUp credits offline time in one step, for example the gap between a
// saved session and process start. The remainder is carried like Advance.
func (p *PassiveTicker) CatchUp(offline time.Duration) (float64, error) {
	if offline <= 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.acc += offline
	ticks := p.acc / p.interval
	if ticks == 0 {
		return 0, nil
	}
	credit := ticks * p.interval
	if err := p.engine.Tick(credit.Seconds()); err != nil {
		return 0, fmt.Errorf("catch up: %w", err)
	}
	p.acc -= credit
	return credit.Seconds(), nil
}

// Pending returns the carried time not yet credited.
func (p *PassiveTicker) Pending() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acc
}
