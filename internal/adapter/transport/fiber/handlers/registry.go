package handlers

import (
	"sync"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// SubscriptionRegistry hands out exactly one ports.Subscription per
// connected device and reuses it across an HTTP polling sequence of
// events_subscribe/events_listen calls, since a Session's Subscription
// must persist between otherwise-stateless unary requests (spec.md §5:
// "owned exclusively by one connection").
type SubscriptionRegistry struct {
	bus ports.EventBus
	mu  sync.Mutex
	byDevice map[domain.DeviceID]*ports.Subscription
}

func NewSubscriptionRegistry(bus ports.EventBus) *SubscriptionRegistry {
	return &SubscriptionRegistry{bus: bus, byDevice: make(map[domain.DeviceID]*ports.Subscription)}
}

func (r *SubscriptionRegistry) Get(device domain.DeviceID) *ports.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.byDevice[device]; ok {
		return sub
	}
	sub := r.bus.Subscribe(device)
	r.byDevice[device] = sub
	return sub
}

// Drop tears down a device's subscription, called when its WebSocket
// connection closes.
func (r *SubscriptionRegistry) Drop(device domain.DeviceID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.byDevice[device]; ok {
		r.bus.Unsubscribe(sub)
		delete(r.byDevice, device)
	}
}
