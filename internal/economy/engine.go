package economy

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"SantaClicker/internal/ledger"
	"SantaClicker/internal/model"
	"SantaClicker/internal/upgrade"
)

var (
	ErrUnknownUpgrade = errors.New("unknown upgrade")
	ErrInvalidElapsed = errors.New("elapsed seconds must be finite and non-negative")
)

// Engine orchestrates clicks, passive ticks and upgrade purchases over a
// ledger and a progress map. One mutex serializes every mutation and every
// multi-value read, so a purchase is observed either fully applied or not at all.
type Engine struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	progress *upgrade.Progress
	catalog  *upgrade.Catalog
	logger   *slog.Logger

	notifier
}

// New creates an Engine for catalog with a fresh ledger and no upgrades bought.
func New(catalog *upgrade.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ledger:   ledger.New(),
		progress: upgrade.NewProgress(),
		catalog:  catalog,
		logger:   logger,
		notifier: notifier{changed: make(chan struct{}, 1)},
	}
}

// Catalog returns the upgrade catalog the engine was built with.
func (e *Engine) Catalog() *upgrade.Catalog {
	return e.catalog
}

// ApplyClick credits basePerClick times the currency's click multiplier and
// returns the gain.
func (e *Engine) ApplyClick(c model.Currency, basePerClick float64) (float64, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("apply click: %w", ledger.ErrUnknownCurrency)
	}
	if !finite(basePerClick) || basePerClick < 0 {
		return 0, fmt.Errorf("apply click: %w: base per click %v", ledger.ErrInvalidAmount, basePerClick)
	}

	e.mu.Lock()
	gain := basePerClick * e.ledger.ClickMultiplier(c)
	err := e.ledger.Add(c, gain)
	balance := e.ledger.Balance(c)
	e.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("apply click: %w", err)
	}

	e.notify(Change{Kind: ChangeClick, Currency: c, Amount: gain, Balance: balance})
	return gain, nil
}

// Tick credits passiveRate * elapsedSeconds to every currency. A zero interval
// changes nothing and emits no notification.
func (e *Engine) Tick(elapsedSeconds float64) error {
	if !finite(elapsedSeconds) || elapsedSeconds < 0 {
		return fmt.Errorf("tick: %w: %v", ErrInvalidElapsed, elapsedSeconds)
	}
	if elapsedSeconds == 0 {
		return nil
	}

	changes := make([]Change, 0, model.NumCurrencies)
	e.mu.Lock()
	for _, c := range model.Currencies {
		rate := e.ledger.PassiveRate(c)
		if rate == 0 {
			continue
		}
		gain := rate * elapsedSeconds
		if err := e.ledger.Add(c, gain); err != nil {
			e.logger.Error("passive income skipped", "currency", c, "gain", gain, "error", err)
			continue
		}
		changes = append(changes, Change{Kind: ChangeTick, Currency: c, Amount: gain, Balance: e.ledger.Balance(c), Elapsed: elapsedSeconds})
	}
	e.mu.Unlock()

	for _, ch := range changes {
		e.notify(ch)
	}
	return nil
}

// Cost returns the current price of the upgrade at its purchased level.
func (e *Engine) Cost(id model.UpgradeID) (float64, error) {
	def, ok := e.catalog.Get(id)
	if !ok {
		return 0, fmt.Errorf("cost %q: %w", id, ErrUnknownUpgrade)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return def.CostAt(e.progress.Level(id)), nil
}

// Level returns how many times the upgrade has been bought.
func (e *Engine) Level(id model.UpgradeID) (int, error) {
	if !e.catalog.Has(id) {
		return 0, fmt.Errorf("level %q: %w", id, ErrUnknownUpgrade)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress.Level(id), nil
}

// CanAfford reports whether the cost currency balance covers the current cost.
func (e *Engine) CanAfford(id model.UpgradeID) (bool, error) {
	def, ok := e.catalog.Get(id)
	if !ok {
		return false, fmt.Errorf("can afford %q: %w", id, ErrUnknownUpgrade)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.affordable(&def), nil
}

// Purchase buys one level of the upgrade. Cost and affordability are
// recomputed under the engine lock; insufficient funds returns false with a
// nil error and leaves all state untouched.
func (e *Engine) Purchase(id model.UpgradeID) (bool, error) {
	def, ok := e.catalog.Get(id)
	if !ok {
		return false, fmt.Errorf("purchase %q: %w", id, ErrUnknownUpgrade)
	}

	e.mu.Lock()
	level := e.progress.Level(id)
	cost := def.CostAt(level)
	if !e.affordable(&def) {
		balance := e.ledger.Balance(def.CostCurrency)
		e.mu.Unlock()
		e.logger.Debug("cannot afford upgrade", "upgrade", id, "cost", cost, "balance", balance)
		return false, nil
	}

	spent, err := e.ledger.Spend(def.CostCurrency, cost)
	if err != nil || !spent {
		e.mu.Unlock()
		if err != nil {
			return false, fmt.Errorf("purchase %q: %w", id, err)
		}
		return false, nil
	}
	newLevel := e.progress.Increment(id)
	for i, eff := range def.Effects {
		if err := e.applyEffect(eff); err != nil {
			e.logger.Error("upgrade effect skipped", "upgrade", id, "effect", i, "error", err)
		}
	}
	balance := e.ledger.Balance(def.CostCurrency)
	e.mu.Unlock()

	e.logger.Info("upgrade purchased", "upgrade", id, "level", newLevel, "cost", cost, "currency", def.CostCurrency)
	e.notify(Change{Kind: ChangePurchase, UpgradeID: id, Currency: def.CostCurrency, Amount: cost, Balance: balance, Level: newLevel})
	return true, nil
}

// affordable must be called with e.mu held.
func (e *Engine) affordable(def *model.UpgradeDefinition) bool {
	cost := def.CostAt(e.progress.Level(def.ID))
	if math.IsInf(cost, 1) {
		return false
	}
	return e.ledger.Balance(def.CostCurrency) >= cost
}

func (e *Engine) applyEffect(eff model.UpgradeEffect) error {
	switch eff.Kind {
	case model.EffectClick:
		return e.ledger.IncreaseClickMultiplier(eff.Currency, eff.Amount)
	case model.EffectPassive:
		return e.ledger.IncreasePassiveRate(eff.Currency, eff.Amount)
	default:
		return fmt.Errorf("unknown effect kind %v", eff.Kind)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
