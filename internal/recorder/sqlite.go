package recorder

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"SantaClicker/internal/model"
)

// SQLiteRecorder persists purchase and balance history to a SQLite database.
// Every row carries the session id so several runs can share one file.
type SQLiteRecorder struct {
	db        *sql.DB
	mu        sync.Mutex
	sessionID string
	logger    *slog.Logger
}

// NewSQLiteRecorder opens (or creates) the database, runs migrations and
// registers a new session row.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, sessionID: uuid.NewString(), logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		r.sessionID, time.Now().Unix()); err != nil {
		db.Close()
		return nil, fmt.Errorf("register session: %w", err)
	}

	logger.Info("sqlite recorder opened", "path", dbPath, "session", r.sessionID)
	return r, nil
}

// SessionID identifies the rows written by this recorder.
func (r *SQLiteRecorder) SessionID() string {
	return r.sessionID
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id    TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			upgrade_id    TEXT NOT NULL,
			level         INTEGER NOT NULL,
			currency      TEXT NOT NULL,
			cost          REAL,
			balance_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,

		`CREATE TABLE IF NOT EXISTS balance_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id      TEXT NOT NULL,
			session_id       TEXT NOT NULL,
			timestamp        INTEGER NOT NULL,
			currency         TEXT NOT NULL,
			balance          REAL,
			click_multiplier REAL,
			passive_rate     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON balance_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPurchase(evt *PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO purchases
		(session_id, timestamp, upgrade_id, level, currency, cost, balance_after)
		VALUES (?,?,?,?,?,?,?)`,
		r.sessionID, at.Unix(), string(evt.UpgradeID), evt.Level,
		evt.Currency.String(), evt.Cost, evt.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// RecordSnapshot writes one row per currency in a single transaction, all
// sharing a fresh snapshot id.
func (r *SQLiteRecorder) RecordSnapshot(snap *BalanceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := snap.At
	if at.IsZero() {
		at = time.Now()
	}
	snapshotID := uuid.NewString()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	for _, acc := range snap.Accounts {
		if _, err := tx.Exec(`INSERT INTO balance_snapshots
			(snapshot_id, session_id, timestamp, currency, balance, click_multiplier, passive_rate)
			VALUES (?,?,?,?,?,?,?)`,
			snapshotID, r.sessionID, at.Unix(), acc.Currency.String(),
			acc.Balance, acc.ClickMultiplier, acc.PassiveRate,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// RecentPurchases returns up to limit purchases of this session, newest first.
func (r *SQLiteRecorder) RecentPurchases(limit int) ([]PurchaseEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, upgrade_id, level, currency, cost, balance_after
		FROM purchases WHERE session_id = ? ORDER BY id DESC LIMIT ?`, r.sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	var out []PurchaseEvent
	for rows.Next() {
		var (
			ts       int64
			id, curr string
			evt      PurchaseEvent
		)
		if err := rows.Scan(&ts, &id, &evt.Level, &curr, &evt.Cost, &evt.BalanceAfter); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		c, err := model.ParseCurrency(curr)
		if err != nil {
			r.logger.Warn("skipping purchase row with unknown currency", "currency", curr)
			continue
		}
		evt.UpgradeID = model.UpgradeID(id)
		evt.Currency = c
		evt.At = time.Unix(ts, 0)
		out = append(out, evt)
	}
	return out, rows.Err()
}

// SnapshotCount returns how many snapshot batches this session has written.
func (r *SQLiteRecorder) SnapshotCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	err := r.db.QueryRow(`SELECT COUNT(DISTINCT snapshot_id) FROM balance_snapshots WHERE session_id = ?`,
		r.sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
