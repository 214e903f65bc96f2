package economy

import (
	"fmt"

	"SantaClicker/internal/ledger"
	"SantaClicker/internal/model"
	"SantaClicker/internal/upgrade"
)

type CurrencyView struct {
	Currency        model.Currency `json:"currency"`
	Balance         float64        `json:"balance"`
	ClickMultiplier float64        `json:"click_multiplier"`
	PassiveRate     float64        `json:"passive_rate"`
}

// StateView is a consistent read of every currency and upgrade level.
type StateView struct {
	Currencies []CurrencyView          `json:"currencies"`
	Levels     map[model.UpgradeID]int `json:"levels"`
}

// Currency returns the view of c, or a zero view if c is not present.
func (s StateView) Currency(c model.Currency) CurrencyView {
	for _, cv := range s.Currencies {
		if cv.Currency == c {
			return cv
		}
	}
	return CurrencyView{Currency: c}
}

type UpgradeView struct {
	ID           model.UpgradeID       `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description,omitempty"`
	CostCurrency model.Currency        `json:"cost_currency"`
	Level        int                   `json:"level"`
	Cost         float64               `json:"cost"`
	Affordable   bool                  `json:"affordable"`
	Effects      []model.UpgradeEffect `json:"effects"`
}

// Snapshot is everything needed to resume a session.
type Snapshot struct {
	Ledger ledger.State            `json:"ledger"`
	Levels map[model.UpgradeID]int `json:"levels"`
}

// Balance returns the balance of c. Reads 0 for an unknown currency.
func (e *Engine) Balance(c model.Currency) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Balance(c)
}

func (e *Engine) ClickMultiplier(c model.Currency) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.ClickMultiplier(c)
}

func (e *Engine) PassiveRate(c model.Currency) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.PassiveRate(c)
}

// State returns balances, multipliers, rates and levels read under one lock.
func (e *Engine) State() StateView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Upgrades returns every catalog entry in authored order with its current
// level, cost and affordability.
func (e *Engine) Upgrades() []UpgradeView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.upgradesLocked()
}

// Overview is the state and every upgrade view taken from one read.
type Overview struct {
	State    StateView
	Upgrades []UpgradeView
}

// Overview returns State and Upgrades read under one lock, so affordability
// always matches the balances beside it.
func (e *Engine) Overview() Overview {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Overview{State: e.stateLocked(), Upgrades: e.upgradesLocked()}
}

func (e *Engine) stateLocked() StateView {
	view := StateView{
		Currencies: make([]CurrencyView, 0, model.NumCurrencies),
		Levels:     e.progress.Levels(),
	}
	for _, c := range model.Currencies {
		view.Currencies = append(view.Currencies, CurrencyView{
			Currency:        c,
			Balance:         e.ledger.Balance(c),
			ClickMultiplier: e.ledger.ClickMultiplier(c),
			PassiveRate:     e.ledger.PassiveRate(c),
		})
	}
	return view
}

func (e *Engine) upgradesLocked() []UpgradeView {
	ids := e.catalog.IDs()
	views := make([]UpgradeView, 0, len(ids))
	for _, id := range ids {
		def, _ := e.catalog.Get(id)
		views = append(views, e.viewLocked(&def))
	}
	return views
}

// Upgrade returns the view of a single upgrade.
func (e *Engine) Upgrade(id model.UpgradeID) (UpgradeView, error) {
	def, ok := e.catalog.Get(id)
	if !ok {
		return UpgradeView{}, fmt.Errorf("upgrade %q: %w", id, ErrUnknownUpgrade)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(&def), nil
}

func (e *Engine) viewLocked(def *model.UpgradeDefinition) UpgradeView {
	level := e.progress.Level(def.ID)
	return UpgradeView{
		ID:           def.ID,
		Name:         def.Name,
		Description:  def.Description,
		CostCurrency: def.CostCurrency,
		Level:        level,
		Cost:         def.CostAt(level),
		Affordable:   e.affordable(def),
		Effects:      def.Effects,
	}
}

// Snapshot returns the ledger and upgrade levels read under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Ledger: e.ledger.Snapshot(),
		Levels: e.progress.Levels(),
	}
}

// Restore replaces engine state with snap. Levels for ids missing from the
// catalog are logged and dropped; a negative level or invalid ledger entry
// fails the whole restore and leaves state untouched.
func (e *Engine) Restore(snap Snapshot) error {
	for id, level := range snap.Levels {
		if level < 0 {
			return fmt.Errorf("restore: upgrade %q has negative level %d", id, level)
		}
	}

	e.mu.Lock()
	if err := e.ledger.Restore(snap.Ledger); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("restore: %w", err)
	}
	progress := upgrade.NewProgress()
	for id, level := range snap.Levels {
		if !e.catalog.Has(id) {
			e.logger.Warn("dropping level of unknown upgrade", "upgrade", id, "level", level)
			continue
		}
		progress.Set(id, level)
	}
	e.progress = progress
	e.mu.Unlock()

	e.notify(Change{Kind: ChangeRestore})
	return nil
}
