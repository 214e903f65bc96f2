package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
	"SantaClicker/internal/recorder"
)

type tickLog struct {
	mu    sync.Mutex
	ticks []float64
	err   error
}

func (l *tickLog) Tick(elapsed float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.ticks = append(l.ticks, elapsed)
	return nil
}

func (l *tickLog) total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum float64
	for _, v := range l.ticks {
		sum += v
	}
	return sum
}

var epoch = time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)

func TestPassiveTicker_WholeIntervals(t *testing.T) {
	clock := NewManualClock(epoch)
	log := &tickLog{}
	p, err := NewPassiveTicker(log, clock, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(400 * time.Millisecond)
	if got, _ := p.Advance(); got != 0 {
		t.Errorf("expected no credit below one interval, got %v", got)
	}
	clock.Advance(700 * time.Millisecond)
	if got, _ := p.Advance(); got != 1 {
		t.Errorf("expected 1s credited, got %v", got)
	}
	if got := p.Pending(); got != 100*time.Millisecond {
		t.Errorf("expected 100ms carried, got %s", got)
	}
	clock.Advance(2900 * time.Millisecond)
	if got, _ := p.Advance(); got != 3 {
		t.Errorf("expected 3s credited, got %v", got)
	}
	if got := log.total(); got != 4 {
		t.Errorf("expected 4s total, got %v", got)
	}
	if len(log.ticks) != 2 {
		t.Errorf("expected 2 engine ticks, got %d", len(log.ticks))
	}
}

func TestPassiveTicker_ClockGoesBackwards(t *testing.T) {
	clock := NewManualClock(epoch)
	log := &tickLog{}
	p, _ := NewPassiveTicker(log, clock, time.Second)

	clock.Set(epoch.Add(-time.Hour))
	if got, _ := p.Advance(); got != 0 {
		t.Errorf("expected no credit for backwards clock, got %v", got)
	}
	clock.Advance(2 * time.Second)
	if got, _ := p.Advance(); got != 2 {
		t.Errorf("expected 2s after reset, got %v", got)
	}
}

func TestPassiveTicker_CatchUp(t *testing.T) {
	log := &tickLog{}
	p, _ := NewPassiveTicker(log, NewManualClock(epoch), 5*time.Second)

	got, err := p.CatchUp(17 * time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got != 15 {
		t.Errorf("expected 15s credited, got %v", got)
	}
	if p.Pending() != 2*time.Second {
		t.Errorf("expected 2s carried, got %s", p.Pending())
	}
	if got, _ := p.CatchUp(-time.Second); got != 0 {
		t.Errorf("negative catch up credited %v", got)
	}
}

func TestPassiveTicker_EngineError(t *testing.T) {
	clock := NewManualClock(epoch)
	boom := errors.New("boom")
	p, _ := NewPassiveTicker(&tickLog{err: boom}, clock, time.Second)
	clock.Advance(time.Second)
	if _, err := p.Advance(); !errors.Is(err, boom) {
		t.Errorf("expected wrapped engine error, got %v", err)
	}
}

func TestPassiveTicker_FailedTickKeepsTime(t *testing.T) {
	clock := NewManualClock(epoch)
	log := &tickLog{err: errors.New("boom")}
	p, _ := NewPassiveTicker(log, clock, time.Second)

	clock.Advance(2500 * time.Millisecond)
	if _, err := p.Advance(); err == nil {
		t.Fatal("expected engine error")
	}
	if got := p.Pending(); got != 2500*time.Millisecond {
		t.Errorf("expected 2.5s kept after failed tick, got %s", got)
	}
	if _, err := p.CatchUp(time.Second); err == nil {
		t.Fatal("expected engine error on catch up")
	}
	if got := p.Pending(); got != 3500*time.Millisecond {
		t.Errorf("expected 3.5s kept after failed catch up, got %s", got)
	}

	log.err = nil
	clock.Advance(500 * time.Millisecond)
	if got, err := p.Advance(); err != nil || got != 4 {
		t.Errorf("expected 4s credited after recovery, got %v (%v)", got, err)
	}
	if got := p.Pending(); got != 0 {
		t.Errorf("expected nothing carried, got %s", got)
	}
}

func TestNewPassiveTicker_RejectsZeroInterval(t *testing.T) {
	if _, err := NewPassiveTicker(&tickLog{}, nil, 0); err == nil {
		t.Error("expected error for zero interval")
	}
}

type stubState struct{}

func (stubState) State() economy.StateView {
	return economy.StateView{Currencies: []economy.CurrencyView{{Currency: model.Cookie, Balance: 3}}}
}

type countingSaver struct{ n int }

func (c *countingSaver) Save() error { c.n++; return nil }

type snapshotRecorder struct {
	recorder.NoopRecorder
	snaps []*recorder.BalanceSnapshot
}

func (s *snapshotRecorder) RecordSnapshot(snap *recorder.BalanceSnapshot) error {
	s.snaps = append(s.snaps, snap)
	return nil
}

func TestScheduler_RunNow(t *testing.T) {
	clock := NewManualClock(epoch)
	log := &tickLog{}
	ticker, _ := NewPassiveTicker(log, clock, time.Second)
	saver := &countingSaver{}
	rec := &snapshotRecorder{}
	s := NewScheduler(ticker, stubState{}, saver, rec, slog.New(slog.NewTextHandler(io.Discard, nil)))

	clock.Advance(3 * time.Second)
	s.RunNow()

	if got := log.total(); got != 3 {
		t.Errorf("expected 3s ticked, got %v", got)
	}
	if saver.n != 1 {
		t.Errorf("expected one save, got %d", saver.n)
	}
	if len(rec.snaps) != 1 || rec.snaps[0].Accounts[0].Balance != 3 {
		t.Errorf("unexpected snapshots: %+v", rec.snaps)
	}
}

func TestScheduler_RegisterAll(t *testing.T) {
	ticker, _ := NewPassiveTicker(&tickLog{}, nil, time.Second)
	s := NewScheduler(ticker, stubState{}, &countingSaver{}, nil, nil)

	if err := s.RegisterAll("@every 1s", "*/30 * * * * *", "0 * * * *"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := len(s.Cron.Entries()); got != 3 {
		t.Errorf("expected 3 jobs, got %d", got)
	}

	bad := NewScheduler(ticker, nil, nil, nil, nil)
	if err := bad.RegisterAll("not a cron", "", ""); err == nil {
		t.Error("expected invalid tick spec to fail")
	}
}

func TestScheduler_OptionalJobs(t *testing.T) {
	ticker, _ := NewPassiveTicker(&tickLog{}, nil, time.Second)
	s := NewScheduler(ticker, nil, nil, nil, nil)
	if err := s.RegisterAll("@every 1s", "@every 30s", "@every 1m"); err != nil {
		t.Fatal(err)
	}
	if got := len(s.Cron.Entries()); got != 1 {
		t.Errorf("expected only the tick job without saver or engine, got %d", got)
	}
}
