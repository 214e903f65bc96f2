package recorder

import (
	"time"

	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
)

// PurchaseEvent records one successful upgrade purchase.
type PurchaseEvent struct {
	UpgradeID    model.UpgradeID
	Level        int
	Currency     model.Currency
	Cost         float64
	BalanceAfter float64
	At           time.Time
}

// BalanceSnapshot holds a periodic copy of every currency account.
type BalanceSnapshot struct {
	Accounts []economy.CurrencyView
	At       time.Time
}

// Recorder persists session history for later analysis.
type Recorder interface {
	RecordPurchase(evt *PurchaseEvent) error
	RecordSnapshot(snap *BalanceSnapshot) error
	RecentPurchases(limit int) ([]PurchaseEvent, error)
	Close() error
}
