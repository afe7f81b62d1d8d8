// Package events implements the in-process publish/subscribe bus of
// spec.md §4.6, in the register/unregister/broadcast shape of
// internal/adapter/websocket/hub.go generalized from websocket clients
// to event subscriptions.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

const pendingBuffer = 32

// Bus is a single process's event fan-out. A session subscribes once per
// connection and replaces its Filter wholesale on events_subscribe; the
// author of a command never receives that command's own event back.
type Bus struct {
	mu   sync.RWMutex
	subs map[*ports.Subscription]bool
	log  *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{subs: make(map[*ports.Subscription]bool), log: log}
}

var _ ports.EventBus = (*Bus)(nil)

func (b *Bus) Subscribe(owner domain.DeviceID) *ports.Subscription {
	sub := &ports.Subscription{Owner: owner, Pending: make(chan ports.Event, pendingBuffer)}
	b.mu.Lock()
	b.subs[sub] = true
	b.mu.Unlock()
	return sub
}

func (b *Bus) Unsubscribe(sub *ports.Subscription) {
	b.mu.Lock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.Pending)
	}
	b.mu.Unlock()
}

// Publish fans ev out to every subscriber whose Filter matches, except
// the one whose Owner produced it. A full subscriber channel drops the
// event rather than blocking the publisher; the change behind a dropped
// notification stays readable through vlob_poll_changes (by checkpoint)
// and message_get (by offset).
func (b *Bus) Publish(ctx context.Context, ev ports.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if sub.Owner == ev.Author {
			continue
		}
		if !sub.Filter.Matches(ev) {
			continue
		}
		select {
		case sub.Pending <- ev:
		default:
			b.log.Warn("dropping event for slow subscriber",
				zap.String("owner", string(sub.Owner)), zap.String("kind", string(ev.Kind)))
		}
	}
	return nil
}
