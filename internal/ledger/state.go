package ledger

import (
	"fmt"
	"math"

	"SantaClicker/internal/model"
)

// Account is the exported view of one currency's ledger entry.
type Account struct {
	Balance         float64 `json:"balance"`
	ClickMultiplier float64 `json:"click_multiplier"`
	PassiveRate     float64 `json:"passive_rate"`
}

// State is a point-in-time copy of the whole ledger, keyed by currency.
type State map[model.Currency]Account

// Snapshot returns a consistent copy of every account.
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st := make(State, model.NumCurrencies)
	for _, c := range model.Currencies {
		acc := l.accounts[c]
		st[c] = Account{Balance: acc.balance, ClickMultiplier: acc.clickMultiplier, PassiveRate: acc.passiveRate}
	}
	return st
}

// Restore replaces the ledger contents with st. Currencies missing from st
// keep their defaults. Nothing is changed if any entry is invalid.
func (l *Ledger) Restore(st State) error {
	next := New().accounts
	for c, acc := range st {
		if !c.Valid() {
			return fmt.Errorf("restore: %w: %d", ErrUnknownCurrency, int(c))
		}
		for _, v := range []float64{acc.Balance, acc.ClickMultiplier, acc.PassiveRate} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("restore %v: %w: %v", c, ErrInvalidAmount, v)
			}
		}
		next[c] = account{balance: acc.Balance, clickMultiplier: acc.ClickMultiplier, passiveRate: acc.PassiveRate}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = next
	return nil
}
