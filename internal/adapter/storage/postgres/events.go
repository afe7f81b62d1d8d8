package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/events"
)

const notifyChannel = "parsec_events"

// EventBus relays events across every process connected to the same
// database (spec.md §4.9 design note: the memory driver's bus is
// process-local, the relational driver's additionally spans
// processes). Publish sends one Postgres NOTIFY; a dedicated pq.Listener
// connection receives it back — in this process and every other one —
// and fans it out to local subscribers through an embedded events.Bus,
// which is what actually applies the per-subscriber Filter and
// self-suppression.
type EventBus struct {
	db       *sql.DB
	local    *events.Bus
	listener *pq.Listener
	log      *zap.Logger
}

// NewEventBus opens its own LISTEN connection against dsn; db is used
// only to send NOTIFY, since that can share the pooled connection.
func NewEventBus(dsn string, db *sql.DB, log *zap.Logger) (*EventBus, error) {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("postgres event listener connection event", zap.Error(err))
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		return nil, fmt.Errorf("postgres: listen %s: %w", notifyChannel, err)
	}

	b := &EventBus{db: db, local: events.NewBus(log), listener: listener, log: log}
	go b.relay()
	return b, nil
}

func (b *EventBus) relay() {
	for n := range b.listener.Notify {
		if n == nil {
			// pq reconnected under us; Listen stays registered, nothing to
			// decode for this tick.
			continue
		}
		ev, err := decodeRelayEvent(n.Extra)
		if err != nil {
			b.log.Warn("failed to decode relayed event", zap.Error(err))
			continue
		}
		if err := b.local.Publish(context.Background(), ev); err != nil {
			b.log.Warn("failed to fan out relayed event", zap.Error(err))
		}
	}
}

func (b *EventBus) Publish(ctx context.Context, ev ports.Event) error {
	payload, err := encodeRelayEvent(ev)
	if err != nil {
		return fmt.Errorf("postgres: encode event: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", notifyChannel, payload); err != nil {
		return fmt.Errorf("postgres: notify: %w", err)
	}
	return nil
}

func (b *EventBus) Subscribe(owner domain.DeviceID) *ports.Subscription {
	return b.local.Subscribe(owner)
}

func (b *EventBus) Unsubscribe(sub *ports.Subscription) { b.local.Unsubscribe(sub) }

func (b *EventBus) Close() error { return b.listener.Close() }

// relayEvent is the NOTIFY payload shape. ports.Event isn't marshaled
// directly: relayEvent gives the payload explicit JSON field names and
// leaves out a zero RealmID (events with no realm, e.g. pinged) instead
// of encoding it as the all-zero UUID.
type relayEvent struct {
	OrganizationID string    `json:"org"`
	Kind           string    `json:"kind"`
	Author         string    `json:"author"`
	RealmID        string    `json:"realm_id,omitempty"`
	Checkpoint     int       `json:"checkpoint,omitempty"`
	Ping           string    `json:"ping,omitempty"`
	Recipient      string    `json:"recipient,omitempty"`
	At             time.Time `json:"at"`
}

func encodeRelayEvent(ev ports.Event) (string, error) {
	r := relayEvent{
		OrganizationID: string(ev.OrganizationID),
		Kind:           string(ev.Kind),
		Author:         string(ev.Author),
		Checkpoint:     ev.Checkpoint,
		Ping:           ev.Ping,
		Recipient:      string(ev.Recipient),
		At:             ev.At,
	}
	var zero domain.RealmID
	if ev.RealmID != zero {
		r.RealmID = ev.RealmID.String()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRelayEvent(payload string) (ports.Event, error) {
	var r relayEvent
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return ports.Event{}, err
	}
	ev := ports.Event{
		OrganizationID: domain.OrganizationID(r.OrganizationID),
		Kind:           ports.EventKind(r.Kind),
		Author:         domain.DeviceID(r.Author),
		Checkpoint:     r.Checkpoint,
		Ping:           r.Ping,
		Recipient:      domain.UserID(r.Recipient),
		At:             r.At,
	}
	if r.RealmID != "" {
		id, err := uuid.Parse(r.RealmID)
		if err != nil {
			return ports.Event{}, fmt.Errorf("postgres: parse relayed realm id: %w", err)
		}
		ev.RealmID = domain.RealmID(id)
	}
	return ev, nil
}
