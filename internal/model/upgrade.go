package model

import (
	"fmt"
	"math"
	"strings"
)

// UpgradeID is the stable lookup key of an upgrade. Display text lives in Name.
type UpgradeID string

// EffectKind selects which ledger value an effect raises.
type EffectKind int

const (
	EffectClick EffectKind = iota
	EffectPassive
)

func (k EffectKind) String() string {
	switch k {
	case EffectClick:
		return "click"
	case EffectPassive:
		return "passive"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

func (k EffectKind) MarshalText() ([]byte, error) {
	switch k {
	case EffectClick, EffectPassive:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("marshal effect kind: invalid value %d", int(k))
	}
}

func (k *EffectKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "click":
		*k = EffectClick
	case "passive":
		*k = EffectPassive
	default:
		return fmt.Errorf("unknown effect kind %q", string(text))
	}
	return nil
}

// UpgradeEffect is one additive modifier applied when an upgrade is bought.
type UpgradeEffect struct {
	Kind     EffectKind `yaml:"kind" json:"kind"`
	Currency Currency   `yaml:"currency" json:"currency"`
	Amount   float64    `yaml:"amount" json:"amount"`
}

// Validate checks that the effect can be applied to a ledger.
func (e UpgradeEffect) Validate() error {
	if e.Kind != EffectClick && e.Kind != EffectPassive {
		return fmt.Errorf("invalid effect kind %d", int(e.Kind))
	}
	if !e.Currency.Valid() {
		return fmt.Errorf("effect references unregistered currency %d", int(e.Currency))
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
		return fmt.Errorf("effect amount must be finite and non-negative, got %v", e.Amount)
	}
	return nil
}

// UpgradeDefinition is immutable authored content describing one purchasable upgrade.
type UpgradeDefinition struct {
	ID             UpgradeID       `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Description    string          `yaml:"description,omitempty" json:"description,omitempty"`
	CostCurrency   Currency        `yaml:"cost_currency" json:"cost_currency"`
	BaseCost       float64         `yaml:"base_cost" json:"base_cost"`
	CostMultiplier float64         `yaml:"cost_multiplier" json:"cost_multiplier"`
	Effects        []UpgradeEffect `yaml:"effects" json:"effects"`
}

// Validate checks the identity and cost curve parameters. Effects are checked
// separately so that a single malformed effect does not discard the upgrade.
func (d *UpgradeDefinition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("upgrade id is required")
	}
	if !d.CostCurrency.Valid() {
		return fmt.Errorf("upgrade %q: invalid cost currency %d", d.ID, int(d.CostCurrency))
	}
	if math.IsNaN(d.BaseCost) || math.IsInf(d.BaseCost, 0) || d.BaseCost <= 0 {
		return fmt.Errorf("upgrade %q: base_cost must be positive and finite, got %v", d.ID, d.BaseCost)
	}
	if math.IsNaN(d.CostMultiplier) || math.IsInf(d.CostMultiplier, 0) || d.CostMultiplier <= 1 {
		return fmt.Errorf("upgrade %q: cost_multiplier must be greater than 1, got %v", d.ID, d.CostMultiplier)
	}
	// Raw prices of consecutive levels differ by at least BaseCost*(CostMultiplier-1).
	// Below 1 two levels can round to the same price.
	if d.BaseCost*(d.CostMultiplier-1) < 1 {
		return fmt.Errorf("upgrade %q: base_cost*(cost_multiplier-1) must be at least 1 for prices to grow every level, got %v",
			d.ID, d.BaseCost*(d.CostMultiplier-1))
	}
	return nil
}

// CostAt returns the integer price of the upgrade when level copies are owned:
// round(BaseCost * CostMultiplier^level), ties rounded away from zero.
func (d *UpgradeDefinition) CostAt(level int) float64 {
	if level < 0 {
		level = 0
	}
	return math.Round(d.BaseCost * math.Pow(d.CostMultiplier, float64(level)))
}
