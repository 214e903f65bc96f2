package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers every endpoint. ws may be nil to disable the
// websocket endpoint.
func NewRouter(h *HandlerProvider, ws http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/state", h.GetStateHandler)
	r.Get("/sources", h.ListSourcesHandler)
	r.Post("/click/{source}", h.ClickHandler)
	r.Get("/upgrades", h.ListUpgradesHandler)
	r.Get("/upgrades/{id}", h.GetUpgradeHandler)
	r.Post("/upgrades/{id}/purchase", h.PurchaseHandler)
	r.Get("/history/purchases", h.PurchaseHistoryHandler)

	if ws != nil {
		r.Handle("/ws", ws)
	}
	return r
}
