package economy

import (
	"sync"

	"SantaClicker/internal/model"
)

// ChangeKind identifies the mutation behind a Change.
type ChangeKind int

const (
	ChangeClick ChangeKind = iota
	ChangeTick
	ChangePurchase
	ChangeRestore
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeClick:
		return "click"
	case ChangeTick:
		return "tick"
	case ChangePurchase:
		return "purchase"
	case ChangeRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Change describes one successful mutation. Amount is the click gain, the
// passive gain of one currency, or the price paid for a purchase. Balance is
// the Currency balance read under the same lock as the mutation.
type Change struct {
	Kind      ChangeKind
	Currency  model.Currency
	UpgradeID model.UpgradeID
	Amount    float64
	Balance   float64
	Level     int
	Elapsed   float64
}

// Listener receives changes synchronously, after the engine lock is released.
// Listeners must not block.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

type notifier struct {
	changed chan struct{}

	subMu  sync.RWMutex
	nextID int
	subs   []subscription
}

// Changed returns a coalesced dirty signal. Any number of mutations between
// two reads collapse into one pending value.
func (n *notifier) Changed() <-chan struct{} {
	return n.changed
}

// Subscribe registers fn for every future Change and returns a func that
// removes it.
func (n *notifier) Subscribe(fn Listener) (unsubscribe func()) {
	n.subMu.Lock()
	id := n.nextID
	n.nextID++
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	n.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.subMu.Lock()
			defer n.subMu.Unlock()
			for i, s := range n.subs {
				if s.id == id {
					n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (n *notifier) notify(ch Change) {
	select {
	case n.changed <- struct{}{}:
	default:
	}

	n.subMu.RLock()
	subs := n.subs
	n.subMu.RUnlock()
	for _, s := range subs {
		s.fn(ch)
	}
}
