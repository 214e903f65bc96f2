package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"SantaClicker/internal/model"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCurrency = errors.New("unknown currency")
)

const (
	defaultClickMultiplier = 1
	defaultPassiveRate     = 0
)

type account struct {
	balance         float64
	clickMultiplier float64
	passiveRate     float64
}

// Ledger holds balance, click multiplier and passive rate per currency.
// All methods are safe for concurrent use and linearizable.
type Ledger struct {
	mu       sync.RWMutex
	accounts [model.NumCurrencies]account
}

// New creates a Ledger with zero balances, click multiplier 1 and passive rate 0.
func New() *Ledger {
	l := &Ledger{}
	for i := range l.accounts {
		l.accounts[i] = account{clickMultiplier: defaultClickMultiplier, passiveRate: defaultPassiveRate}
	}
	return l
}

// Balance returns the current balance. Unknown currencies read as zero.
func (l *Ledger) Balance(c model.Currency) float64 {
	if !c.Valid() {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[c].balance
}

// ClickMultiplier returns the per-click yield multiplier. Unknown currencies read as zero.
func (l *Ledger) ClickMultiplier(c model.Currency) float64 {
	if !c.Valid() {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[c].clickMultiplier
}

// PassiveRate returns units generated per second. Unknown currencies read as zero.
func (l *Ledger) PassiveRate(c model.Currency) float64 {
	if !c.Valid() {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[c].passiveRate
}

// Add increases the balance. Decreases go through Spend.
func (l *Ledger) Add(c model.Currency, amount float64) error {
	if err := checkInput(c, amount); err != nil {
		return fmt.Errorf("add %v: %w", c, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return addFinite(&l.accounts[c].balance, amount)
}

// Spend decreases the balance if it covers amount. Insufficient funds is
// reported as false with a nil error; malformed input returns an error.
// The balance is untouched on any failure.
func (l *Ledger) Spend(c model.Currency, amount float64) (bool, error) {
	if err := checkInput(c, amount); err != nil {
		return false, fmt.Errorf("spend %v: %w", c, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	acc := &l.accounts[c]
	if acc.balance < amount {
		return false, nil
	}
	acc.balance -= amount
	return true, nil
}

// IncreaseClickMultiplier adds delta to the click multiplier.
func (l *Ledger) IncreaseClickMultiplier(c model.Currency, delta float64) error {
	if err := checkInput(c, delta); err != nil {
		return fmt.Errorf("increase click multiplier %v: %w", c, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return addFinite(&l.accounts[c].clickMultiplier, delta)
}

// IncreasePassiveRate adds delta to the passive rate.
func (l *Ledger) IncreasePassiveRate(c model.Currency, delta float64) error {
	if err := checkInput(c, delta); err != nil {
		return fmt.Errorf("increase passive rate %v: %w", c, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return addFinite(&l.accounts[c].passiveRate, delta)
}

// addFinite adds delta to *v unless the sum overflows, leaving *v unchanged.
func addFinite(v *float64, delta float64) error {
	sum := *v + delta
	if math.IsInf(sum, 0) {
		return fmt.Errorf("%w: %v + %v overflows", ErrInvalidAmount, *v, delta)
	}
	*v = sum
	return nil
}

func checkInput(c model.Currency, amount float64) error {
	if !c.Valid() {
		return ErrUnknownCurrency
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, amount)
	}
	if amount < 0 {
		return fmt.Errorf("%w: %v is negative", ErrInvalidAmount, amount)
	}
	return nil
}
