package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SantaClicker/internal/api"
	"SantaClicker/internal/clicker"
	"SantaClicker/internal/config"
	"SantaClicker/internal/economy"
	"SantaClicker/internal/logging"
	"SantaClicker/internal/notifier"
	"SantaClicker/internal/recorder"
	"SantaClicker/internal/scheduler"
	"SantaClicker/internal/session"
	"SantaClicker/internal/upgrade"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("clicker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("clicker starting", "catalog", cfg.Catalog.Path, "state_file", cfg.Session.StateFile)

	// Init catalog and engine
	catalog, err := upgrade.LoadCatalog(cfg.Catalog.Path, logger)
	if err != nil {
		return err
	}
	logger.Info("upgrade catalog loaded", "path", cfg.Catalog.Path, "upgrades", catalog.Len())
	engine := economy.New(catalog, logger)

	// Restore session
	store := session.NewStore(cfg.Session.StateFile, engine)
	savedAt, err := store.Restore()
	if err != nil {
		return err
	}
	if !savedAt.IsZero() {
		logger.Info("session restored", "file", cfg.Session.StateFile, "saved_at", savedAt)
	}

	sources, err := cfg.Sources()
	if err != nil {
		return err
	}
	dispatcher, err := clicker.NewDispatcher(engine, sources)
	if err != nil {
		return err
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", "error", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	journal := recorder.NewJournal(engine, rec, 0, logger)
	journalDone := make(chan struct{})
	go func() {
		journal.Run(ctx)
		close(journalDone)
	}()

	// Passive income for the time the process was down
	ticker, err := scheduler.NewPassiveTicker(engine, scheduler.SystemClock(), cfg.Tick.Interval)
	if err != nil {
		return err
	}
	if !savedAt.IsZero() && cfg.Tick.OfflineCap > 0 {
		offline := min(time.Since(savedAt), cfg.Tick.OfflineCap)
		credited, err := ticker.CatchUp(offline)
		if err != nil {
			logger.Warn("offline catch up failed", "error", err)
		} else if credited > 0 {
			logger.Info("offline income credited", "seconds", credited)
		}
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ticker, engine, store, rec, logger)
	if err := sched.RegisterAll(cfg.Schedule.TickCron, cfg.Schedule.AutosaveCron, cfg.Schedule.SnapshotCron); err != nil {
		return err
	}
	sched.Start()

	// Websocket hub and HTTP API
	hub := notifier.NewHub(engine, dispatcher, logger)
	go hub.Run(ctx)

	handler := api.NewHandler(engine, dispatcher, rec, logger)
	srv := api.NewServer(cfg.HTTP.Addr, api.NewRouter(handler, http.HandlerFunc(hub.ServeWS)))
	srvErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	logger.Info("clicker is running, press Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping")
	case runErr = <-srvErr:
		logger.Error("http server failed", "error", runErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	sched.Stop()
	if err := store.Save(); err != nil {
		logger.Error("final save failed", "error", err)
	} else {
		logger.Info("session saved", "file", cfg.Session.StateFile)
	}
	<-journalDone

	logger.Info("clicker stopped")
	return runErr
}
