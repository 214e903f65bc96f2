package clicker

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"SantaClicker/internal/model"
)

var ErrUnknownSource = errors.New("unknown click source")

// Source is a named clickable thing bound to one currency.
type Source struct {
	Name         string         `yaml:"name" json:"name"`
	Currency     model.Currency `yaml:"currency" json:"currency"`
	BasePerClick float64        `yaml:"per_click" json:"per_click"`
}

// Clicker applies a click to the economy and returns the gain.
type Clicker interface {
	ApplyClick(c model.Currency, basePerClick float64) (float64, error)
}

// Dispatcher routes click events by source name to the economy engine.
type Dispatcher struct {
	engine  Clicker
	sources map[string]Source
}

// NewDispatcher indexes sources by name. Names are matched case-insensitively.
func NewDispatcher(engine Clicker, sources []Source) (*Dispatcher, error) {
	d := &Dispatcher{engine: engine, sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		key := sourceKey(s.Name)
		if key == "" {
			return nil, fmt.Errorf("click source with empty name")
		}
		if !s.Currency.Valid() {
			return nil, fmt.Errorf("click source %q: invalid currency %v", s.Name, s.Currency)
		}
		if s.BasePerClick < 0 {
			return nil, fmt.Errorf("click source %q: per_click must be non-negative", s.Name)
		}
		if _, dup := d.sources[key]; dup {
			return nil, fmt.Errorf("duplicate click source %q", s.Name)
		}
		d.sources[key] = s
	}
	return d, nil
}

// HandleClick credits one click of the named source.
func (d *Dispatcher) HandleClick(name string) (float64, error) {
	src, ok := d.sources[sourceKey(name)]
	if !ok {
		return 0, fmt.Errorf("click %q: %w", name, ErrUnknownSource)
	}
	gain, err := d.engine.ApplyClick(src.Currency, src.BasePerClick)
	if err != nil {
		return 0, fmt.Errorf("click %q: %w", name, err)
	}
	return gain, nil
}

// Sources returns the registered sources sorted by name.
func (d *Dispatcher) Sources() []Source {
	out := make([]Source, 0, len(d.sources))
	for _, s := range d.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sourceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
