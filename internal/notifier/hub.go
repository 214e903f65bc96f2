package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"SantaClicker/internal/clicker"
	"SantaClicker/internal/economy"
	"SantaClicker/internal/model"
)

// Engine is the part of the economy engine the hub needs.
type Engine interface {
	Overview() economy.Overview
	Purchase(id model.UpgradeID) (bool, error)
	Changed() <-chan struct{}
}

// ClickHandler resolves a named click source.
type ClickHandler interface {
	HandleClick(name string) (float64, error)
}

// UpgradeCard is an upgrade view with its display text.
type UpgradeCard struct {
	economy.UpgradeView
	CostText string `json:"cost_text"`
	Text     string `json:"text"`
}

// Cards renders every upgrade for display.
func Cards(views []economy.UpgradeView) []UpgradeCard {
	cards := make([]UpgradeCard, 0, len(views))
	for _, v := range views {
		cards = append(cards, UpgradeCard{
			UpgradeView: v,
			CostText:    FormatMagnitude(v.Cost),
			Text:        FormatUpgradeDescription(v),
		})
	}
	return cards
}

// Message is every frame the hub writes.
type Message struct {
	Type      string             `json:"type"`
	State     *economy.StateView `json:"state,omitempty"`
	Upgrades  []UpgradeCard      `json:"upgrades,omitempty"`
	Summary   string             `json:"summary,omitempty"`
	Source    string             `json:"source,omitempty"`
	Gain      float64            `json:"gain,omitempty"`
	Upgrade   model.UpgradeID    `json:"upgrade,omitempty"`
	Purchased *bool              `json:"purchased,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Command is every frame a client may send.
type Command struct {
	Type    string          `json:"type"`
	Source  string          `json:"source,omitempty"`
	Upgrade model.UpgradeID `json:"upgrade,omitempty"`
}

// Hub keeps the set of connected display clients, pushes state to them
// whenever the engine signals a change and routes their commands.
// The hub must be the only reader of engine.Changed().
type Hub struct {
	engine   Engine
	clicks   ClickHandler
	upgrader websocket.Upgrader
	logger   *slog.Logger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub(engine Engine, clicks ClickHandler, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		engine: engine,
		clicks: clicks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles client registration and change pushes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub stopped")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("websocket client connected", "remote", client.conn.RemoteAddr().String())
			if payload, err := h.statePayload(); err == nil {
				client.queue(payload)
			}
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.logger.Info("websocket client disconnected")
			}
			h.mu.Unlock()
		case <-h.engine.Changed():
			payload, err := h.statePayload()
			if err != nil {
				h.logger.Error("encode state", "error", err)
				continue
			}
			h.broadcast(payload)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast must only be called from Run. A client whose queue is full is
// disconnected; its read pump then unregisters it.
func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.queue(payload) {
			h.logger.Warn("websocket client too slow, closing")
			client.conn.Close()
		}
	}
}

func (h *Hub) statePayload() ([]byte, error) {
	ov := h.engine.Overview()
	return json.Marshal(Message{
		Type:     "state",
		State:    &ov.State,
		Upgrades: Cards(ov.Upgrades),
		Summary:  FormatState(ov.State),
	})
}

// ServeWS upgrades the request and starts the client pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := newClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}

// handle executes one client command and returns the reply.
func (h *Hub) handle(cmd Command) Message {
	switch cmd.Type {
	case "click":
		if h.clicks == nil {
			return Message{Type: "error", Error: "clicks are not enabled"}
		}
		gain, err := h.clicks.HandleClick(cmd.Source)
		if err != nil {
			h.logCommandError(cmd, err)
			return Message{Type: "error", Source: cmd.Source, Error: err.Error()}
		}
		return Message{Type: "click", Source: cmd.Source, Gain: gain}
	case "purchase":
		ok, err := h.engine.Purchase(cmd.Upgrade)
		if err != nil {
			h.logCommandError(cmd, err)
			return Message{Type: "error", Upgrade: cmd.Upgrade, Error: err.Error()}
		}
		return Message{Type: "purchase", Upgrade: cmd.Upgrade, Purchased: &ok}
	default:
		return Message{Type: "error", Error: "unknown command type " + cmd.Type}
	}
}

// isClientError reports whether err was caused by the command rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, clicker.ErrUnknownSource) || errors.Is(err, economy.ErrUnknownUpgrade)
}

func (h *Hub) logCommandError(cmd Command, err error) {
	if isClientError(err) {
		h.logger.Debug("rejected websocket command", "type", cmd.Type, "error", err)
		return
	}
	h.logger.Error("websocket command failed", "type", cmd.Type, "error", err)
}
