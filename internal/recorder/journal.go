package recorder

import (
	"context"
	"log/slog"
	"time"

	"SantaClicker/internal/economy"
)

// Source is the part of the economy engine the journal listens to.
type Source interface {
	Subscribe(fn economy.Listener) (unsubscribe func())
}

// Journal turns engine purchase changes into PurchaseEvents and writes them
// on its own goroutine. Events are dropped with a warning when the queue is full.
type Journal struct {
	rec         Recorder
	queue       chan PurchaseEvent
	unsubscribe func()
	logger      *slog.Logger
}

func NewJournal(src Source, rec Recorder, size int, logger *slog.Logger) *Journal {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	j := &Journal{rec: rec, queue: make(chan PurchaseEvent, size), logger: logger}
	j.unsubscribe = src.Subscribe(j.onChange)
	return j
}

// Run writes queued events until ctx is done, then unsubscribes and flushes
// what is left.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case evt := <-j.queue:
			j.write(evt)
		case <-ctx.Done():
			j.unsubscribe()
			for {
				select {
				case evt := <-j.queue:
					j.write(evt)
				default:
					return
				}
			}
		}
	}
}

func (j *Journal) onChange(ch economy.Change) {
	if ch.Kind != economy.ChangePurchase {
		return
	}
	evt := PurchaseEvent{
		UpgradeID:    ch.UpgradeID,
		Level:        ch.Level,
		Currency:     ch.Currency,
		Cost:         ch.Amount,
		BalanceAfter: ch.Balance,
		At:           time.Now(),
	}
	select {
	case j.queue <- evt:
	default:
		j.logger.Warn("purchase journal full, dropping event", "upgrade", ch.UpgradeID, "level", ch.Level)
	}
}

func (j *Journal) write(evt PurchaseEvent) {
	if err := j.rec.RecordPurchase(&evt); err != nil {
		j.logger.Error("record purchase failed", "upgrade", evt.UpgradeID, "error", err)
	}
}
