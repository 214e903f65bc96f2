package upgrade

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"SantaClicker/internal/model"
)

// Catalog is the immutable set of purchasable upgrades, indexed by ID and
// kept in authored order for display.
type Catalog struct {
	order []model.UpgradeID
	defs  map[model.UpgradeID]model.UpgradeDefinition
}

// NewCatalog validates defs and builds a Catalog. A malformed upgrade (bad id,
// cost currency or cost curve) is an error; a malformed effect is logged and
// dropped from its upgrade.
func NewCatalog(defs []model.UpgradeDefinition, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		order: make([]model.UpgradeID, 0, len(defs)),
		defs:  make(map[model.UpgradeID]model.UpgradeDefinition, len(defs)),
	}
	for i := range defs {
		def := defs[i]
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("upgrade #%d: %w", i, err)
		}
		if _, dup := c.defs[def.ID]; dup {
			return nil, fmt.Errorf("duplicate upgrade id %q", def.ID)
		}

		effects := make([]model.UpgradeEffect, 0, len(def.Effects))
		for j, eff := range def.Effects {
			if err := eff.Validate(); err != nil {
				logger.Warn("skipping malformed upgrade effect", "upgrade", def.ID, "effect", j, "error", err)
				continue
			}
			effects = append(effects, eff)
		}
		def.Effects = effects

		c.order = append(c.order, def.ID)
		c.defs[def.ID] = def
	}
	return c, nil
}

// Get returns a copy of the definition for id.
func (c *Catalog) Get(id model.UpgradeID) (model.UpgradeDefinition, bool) {
	def, ok := c.defs[id]
	if !ok {
		return model.UpgradeDefinition{}, false
	}
	def.Effects = slices.Clone(def.Effects)
	return def, true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id model.UpgradeID) bool {
	_, ok := c.defs[id]
	return ok
}

// IDs returns upgrade ids in authored order.
func (c *Catalog) IDs() []model.UpgradeID {
	return slices.Clone(c.order)
}

// Len returns the number of upgrades.
func (c *Catalog) Len() int {
	return len(c.order)
}

// rawEffect keeps currency and kind as text so one bad entry can be skipped
// without failing the whole document.
type rawEffect struct {
	Kind     string  `yaml:"kind"`
	Currency string  `yaml:"currency"`
	Amount   float64 `yaml:"amount"`
}

type rawUpgrade struct {
	ID             string      `yaml:"id"`
	Name           string      `yaml:"name"`
	Description    string      `yaml:"description"`
	CostCurrency   string      `yaml:"cost_currency"`
	BaseCost       float64     `yaml:"base_cost"`
	CostMultiplier float64     `yaml:"cost_multiplier"`
	Effects        []rawEffect `yaml:"effects"`
}

type catalogFile struct {
	Upgrades []rawUpgrade `yaml:"upgrades"`
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	defs := make([]model.UpgradeDefinition, 0, len(file.Upgrades))
	for _, ru := range file.Upgrades {
		costCurrency, err := model.ParseCurrency(ru.CostCurrency)
		if err != nil {
			return nil, fmt.Errorf("upgrade %q: cost_currency: %w", ru.ID, err)
		}
		def := model.UpgradeDefinition{
			ID:             model.UpgradeID(ru.ID),
			Name:           ru.Name,
			Description:    ru.Description,
			CostCurrency:   costCurrency,
			BaseCost:       ru.BaseCost,
			CostMultiplier: ru.CostMultiplier,
		}
		if def.Name == "" {
			def.Name = ru.ID
		}
		for j, re := range ru.Effects {
			var eff model.UpgradeEffect
			if err := eff.Kind.UnmarshalText([]byte(re.Kind)); err != nil {
				logger.Warn("skipping malformed upgrade effect", "upgrade", ru.ID, "effect", j, "error", err)
				continue
			}
			if eff.Currency, err = model.ParseCurrency(re.Currency); err != nil {
				logger.Warn("skipping malformed upgrade effect", "upgrade", ru.ID, "effect", j, "error", err)
				continue
			}
			eff.Amount = re.Amount
			def.Effects = append(def.Effects, eff)
		}
		defs = append(defs, def)
	}

	return NewCatalog(defs, logger)
}

// LoadCatalog reads and parses a YAML catalog file.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data, logger)
}
