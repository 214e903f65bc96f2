package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"SantaClicker/internal/economy"
	"SantaClicker/internal/recorder"
)

// StateReader is the read side of the economy engine used by the snapshot job.
type StateReader interface {
	State() economy.StateView
}

// Saver persists the session.
type Saver interface {
	Save() error
}

// Scheduler manages the passive tick, autosave and history snapshot jobs.
type Scheduler struct {
	Cron     *cron.Cron
	Ticker   *PassiveTicker
	Engine   StateReader
	Saver    Saver
	Recorder recorder.Recorder
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler. Cron specs accept an optional seconds field.
func NewScheduler(ticker *PassiveTicker, engine StateReader, saver Saver, rec recorder.Recorder, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithParser(cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		Ticker:   ticker,
		Engine:   engine,
		Saver:    saver,
		Recorder: rec,
		logger:   logger,
	}
}

// RegisterAll registers the tick, autosave and snapshot jobs. An empty
// autosave or snapshot spec disables that job.
func (s *Scheduler) RegisterAll(tickCron, autosaveCron, snapshotCron string) error {
	if _, err := s.Cron.AddFunc(tickCron, s.tickTask); err != nil {
		return fmt.Errorf("register tick task: %w", err)
	}
	if autosaveCron != "" && s.Saver != nil {
		if _, err := s.Cron.AddFunc(autosaveCron, s.autosaveTask); err != nil {
			return fmt.Errorf("register autosave task: %w", err)
		}
	}
	if snapshotCron != "" && s.Engine != nil {
		if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
			return fmt.Errorf("register snapshot task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs every job once, in tick, snapshot, autosave order.
func (s *Scheduler) RunNow() {
	s.tickTask()
	if s.Engine != nil {
		s.snapshotTask()
	}
	if s.Saver != nil {
		s.autosaveTask()
	}
}

func (s *Scheduler) tickTask() {
	elapsed, err := s.Ticker.Advance()
	if err != nil {
		s.logger.Error("passive tick failed", "error", err)
		return
	}
	if elapsed > 0 {
		s.logger.Debug("passive tick", "elapsed", elapsed)
	}
}

func (s *Scheduler) autosaveTask() {
	if err := s.Saver.Save(); err != nil {
		s.logger.Error("autosave failed", "error", err)
		return
	}
	s.logger.Debug("session saved")
}

func (s *Scheduler) snapshotTask() {
	view := s.Engine.State()
	if err := s.Recorder.RecordSnapshot(&recorder.BalanceSnapshot{
		Accounts: view.Currencies,
		At:       time.Now(),
	}); err != nil {
		s.logger.Error("record snapshot failed", "error", err)
	}
}
