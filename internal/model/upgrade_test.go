package model

import (
	"math"
	"testing"
)

func TestCostAt_ScenarioCurve(t *testing.T) {
	def := &UpgradeDefinition{ID: "oven", CostCurrency: GingerBread, BaseCost: 10, CostMultiplier: 1.15}

	tests := []struct {
		level int
		want  float64
	}{
		{0, 10},
		{1, 12}, // 11.5 rounds away from zero
		{2, 13},
		{-3, 10},
	}
	for _, tt := range tests {
		if got := def.CostAt(tt.level); got != tt.want {
			t.Errorf("level %d: expected %v, got %v", tt.level, tt.want, got)
		}
	}
}

func TestCostAt_StrictlyIncreasing(t *testing.T) {
	defs := []UpgradeDefinition{
		{ID: "a", CostCurrency: Cookie, BaseCost: 10, CostMultiplier: 1.15},
		{ID: "b", CostCurrency: Cookie, BaseCost: 2, CostMultiplier: 1.5},
		{ID: "c", CostCurrency: Cookie, BaseCost: 100, CostMultiplier: 1.01},
		{ID: "d", CostCurrency: Cookie, BaseCost: 1, CostMultiplier: 2},
		{ID: "e", CostCurrency: Cookie, BaseCost: 100, CostMultiplier: 2},
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			t.Fatalf("%s: unexpected validation error: %v", d.ID, err)
		}
		prev := d.CostAt(0)
		for n := 1; n <= 200; n++ {
			cur := d.CostAt(n)
			if !(cur > prev) {
				t.Fatalf("%s: cost(%d)=%v not greater than cost(%d)=%v", d.ID, n, cur, n-1, prev)
			}
			prev = cur
		}
	}
}

func TestCostAt_SlowCurveFollowsFormula(t *testing.T) {
	def := &UpgradeDefinition{ID: "slow", CostCurrency: Cookie, BaseCost: 1, CostMultiplier: 1.1}

	tests := []struct {
		level int
		want  float64
	}{
		{1, 1},
		{5, 2},
		{10, 3},
		{20, 7},
	}
	for _, tt := range tests {
		if got := def.CostAt(tt.level); got != tt.want {
			t.Errorf("level %d: expected %v, got %v", tt.level, tt.want, got)
		}
	}
	if err := def.Validate(); err == nil {
		t.Error("expected a curve that can repeat a price to fail validation")
	}
}

func TestCostAt_MatchesRoundedFormula(t *testing.T) {
	def := &UpgradeDefinition{ID: "big", BaseCost: 50, CostMultiplier: 1.2}
	for n := 0; n < 30; n++ {
		want := math.Round(50 * math.Pow(1.2, float64(n)))
		if got := def.CostAt(n); got != want {
			t.Errorf("level %d: expected %v, got %v", n, want, got)
		}
	}
}

func TestCostAt_OverflowSaturates(t *testing.T) {
	def := &UpgradeDefinition{ID: "inf", BaseCost: 1, CostMultiplier: 1.5}
	if got := def.CostAt(5000); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf for huge level, got %v", got)
	}
}

func TestUpgradeDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     UpgradeDefinition
		wantErr bool
	}{
		{"ok", UpgradeDefinition{ID: "x", CostCurrency: Cookie, BaseCost: 5, CostMultiplier: 1.3}, false},
		{"growth exactly one", UpgradeDefinition{ID: "x", CostCurrency: Cookie, BaseCost: 1, CostMultiplier: 2}, false},
		{"prices can repeat", UpgradeDefinition{ID: "x", CostCurrency: Cookie, BaseCost: 5, CostMultiplier: 1.1}, true},
		{"missing id", UpgradeDefinition{CostCurrency: Cookie, BaseCost: 5, CostMultiplier: 1.1}, true},
		{"zero base", UpgradeDefinition{ID: "x", BaseCost: 0, CostMultiplier: 1.1}, true},
		{"flat multiplier", UpgradeDefinition{ID: "x", BaseCost: 5, CostMultiplier: 1}, true},
		{"nan multiplier", UpgradeDefinition{ID: "x", BaseCost: 5, CostMultiplier: math.NaN()}, true},
		{"bad currency", UpgradeDefinition{ID: "x", CostCurrency: Currency(7), BaseCost: 5, CostMultiplier: 1.1}, true},
	}
	for _, tt := range tests {
		err := tt.def.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestUpgradeEffect_Validate(t *testing.T) {
	if err := (UpgradeEffect{Kind: EffectPassive, Currency: Cookie, Amount: 0.5}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (UpgradeEffect{Kind: EffectClick, Currency: Currency(-1), Amount: 1}).Validate(); err == nil {
		t.Error("expected error for unregistered currency")
	}
	if err := (UpgradeEffect{Kind: EffectClick, Currency: Cookie, Amount: -1}).Validate(); err == nil {
		t.Error("expected error for negative amount")
	}
	if err := (UpgradeEffect{Kind: EffectKind(9), Currency: Cookie, Amount: 1}).Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"GingerBread", GingerBread, false},
		{"gingerbread", GingerBread, false},
		{" CandyCane ", CandyCane, false},
		{"COOKIE", Cookie, false},
		{"Candy Cane", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCurrency(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: expected error=%v, got %v", tt.in, tt.wantErr, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.in, tt.want, got)
		}
	}
	if Currency(5).Valid() {
		t.Error("Currency(5) should not be valid")
	}
	if got := Currency(5).String(); got != "Currency(5)" {
		t.Errorf("unexpected String for invalid currency: %s", got)
	}
}
