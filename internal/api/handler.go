package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"SantaClicker/internal/clicker"
	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
	"SantaClicker/internal/notifier"
	"SantaClicker/internal/recorder"
)

// Engine is the part of the economy engine exposed over HTTP.
type Engine interface {
	State() economy.StateView
	Upgrades() []economy.UpgradeView
	Upgrade(id model.UpgradeID) (economy.UpgradeView, error)
	Purchase(id model.UpgradeID) (bool, error)
}

// Clicks resolves named click sources.
type Clicks interface {
	HandleClick(name string) (float64, error)
	Sources() []clicker.Source
}

// History reads recorded purchases.
type History interface {
	RecentPurchases(limit int) ([]recorder.PurchaseEvent, error)
}

// HandlerProvider exposes the engine as HTTP handlers.
type HandlerProvider struct {
	engine  Engine
	clicks  Clicks
	history History
	logger  *slog.Logger
}

func NewHandler(engine Engine, clicks Clicks, history History, logger *slog.Logger) *HandlerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &HandlerProvider{engine: engine, clicks: clicks, history: history, logger: logger}
}

// --- Helpers ---

func (h *HandlerProvider) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *HandlerProvider) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

type stateResponse struct {
	economy.StateView
	Summary string `json:"summary"`
}

type purchaseResponse struct {
	Purchased bool                  `json:"purchased"`
	Upgrade   *notifier.UpgradeCard `json:"upgrade,omitempty"`
	Error     string                `json:"error,omitempty"`
}

type purchaseRecord struct {
	UpgradeID    model.UpgradeID `json:"upgrade"`
	Level        int             `json:"level"`
	Currency     model.Currency  `json:"currency"`
	Cost         float64         `json:"cost"`
	BalanceAfter float64         `json:"balance_after"`
	At           int64           `json:"at"`
}

// --- Handlers ---

// GetStateHandler handles GET /state
func (h *HandlerProvider) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	state := h.engine.State()
	h.writeJSON(w, http.StatusOK, stateResponse{StateView: state, Summary: notifier.FormatState(state)})
}

// ListUpgradesHandler handles GET /upgrades
func (h *HandlerProvider) ListUpgradesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, notifier.Cards(h.engine.Upgrades()))
}

// GetUpgradeHandler handles GET /upgrades/{id}
func (h *HandlerProvider) GetUpgradeHandler(w http.ResponseWriter, r *http.Request) {
	id := model.UpgradeID(chi.URLParam(r, "id"))
	view, err := h.engine.Upgrade(id)
	if err != nil {
		if errors.Is(err, economy.ErrUnknownUpgrade) {
			h.writeError(w, http.StatusNotFound, "upgrade not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, notifier.Cards([]economy.UpgradeView{view})[0])
}

// PurchaseHandler handles POST /upgrades/{id}/purchase
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	id := model.UpgradeID(chi.URLParam(r, "id"))
	ok, err := h.engine.Purchase(id)
	if err != nil {
		if errors.Is(err, economy.ErrUnknownUpgrade) {
			h.writeError(w, http.StatusNotFound, "upgrade not found")
			return
		}
		h.logger.Error("purchase failed", "upgrade", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := purchaseResponse{Purchased: ok}
	if view, err := h.engine.Upgrade(id); err == nil {
		card := notifier.Cards([]economy.UpgradeView{view})[0]
		resp.Upgrade = &card
	}
	if !ok {
		resp.Error = "insufficient funds"
		h.writeJSON(w, http.StatusPaymentRequired, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ClickHandler handles POST /click/{source}
func (h *HandlerProvider) ClickHandler(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	gain, err := h.clicks.HandleClick(source)
	if err != nil {
		if errors.Is(err, clicker.ErrUnknownSource) {
			h.writeError(w, http.StatusNotFound, "click source not found")
			return
		}
		h.logger.Error("click failed", "source", source, "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"source": source, "gain": gain})
}

// ListSourcesHandler handles GET /sources
func (h *HandlerProvider) ListSourcesHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.clicks.Sources())
}

// PurchaseHistoryHandler handles GET /history/purchases?limit=n
func (h *HandlerProvider) PurchaseHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	events, err := h.history.RecentPurchases(limit)
	if err != nil {
		h.logger.Error("read purchase history", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]purchaseRecord, 0, len(events))
	for _, e := range events {
		out = append(out, purchaseRecord{
			UpgradeID: e.UpgradeID, Level: e.Level, Currency: e.Currency,
			Cost: e.Cost, BalanceAfter: e.BalanceAfter, At: e.At.Unix(),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
