package session

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
	"SantaClicker/internal/upgrade"
)

func newEngine(t *testing.T) *economy.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat, err := upgrade.NewCatalog([]model.UpgradeDefinition{{
		ID: "cookie_jar", Name: "Cookie Jar",
		CostCurrency: model.Cookie, BaseCost: 15, CostMultiplier: 1.15,
		Effects: []model.UpgradeEffect{{Kind: model.EffectPassive, Currency: model.Cookie, Amount: 0.5}},
	}}, logger)
	if err != nil {
		t.Fatal(err)
	}
	return economy.New(cat, logger)
}

func TestLoadState_MissingFile(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !st.SavedAt.IsZero() {
		t.Errorf("expected zero state, got %+v", st)
	}
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := LoadState(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	src := newEngine(t)
	src.ApplyClick(model.Cookie, 40)
	if ok, _ := src.Purchase("cookie_jar"); !ok {
		t.Fatal("purchase failed")
	}
	if err := NewStore(path, src).Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	dst := newEngine(t)
	savedAt, err := NewStore(path, dst).Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if savedAt.IsZero() {
		t.Error("expected non-zero saved time")
	}
	if got := dst.Balance(model.Cookie); got != 25 {
		t.Errorf("expected balance 25, got %v", got)
	}
	if got := dst.PassiveRate(model.Cookie); got != 0.5 {
		t.Errorf("expected passive rate 0.5, got %v", got)
	}
	if lvl, _ := dst.Level("cookie_jar"); lvl != 1 {
		t.Errorf("expected level 1, got %d", lvl)
	}
}

func TestStore_RestoreWithoutFile(t *testing.T) {
	e := newEngine(t)
	savedAt, err := NewStore(filepath.Join(t.TempDir(), "none.json"), e).Restore()
	if err != nil || !savedAt.IsZero() {
		t.Errorf("expected (zero, nil), got (%v, %v)", savedAt, err)
	}
}

func TestStore_SaveAfterOverflowingClick(t *testing.T) {
	eng := newEngine(t)
	if _, err := eng.ApplyClick(model.Cookie, 1e308); err != nil {
		t.Fatalf("first click: %v", err)
	}
	if _, err := eng.ApplyClick(model.Cookie, 1e308); err == nil {
		t.Error("expected overflowing click to be rejected")
	}

	store := NewStore(filepath.Join(t.TempDir(), "session.json"), eng)
	if err := store.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
}
