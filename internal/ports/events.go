package ports

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// EventKind enumerates the wire-visible event kinds of spec.md §4.6.
type EventKind string

const (
	EventPinged                   EventKind = "pinged"
	EventMessageReceived          EventKind = "message_received"
	EventRealmVlobsUpdated        EventKind = "realm_vlobs_updated"
	EventRealmRolesUpdated        EventKind = "realm_roles_updated"
	EventRealmMaintenanceStarted  EventKind = "realm_maintenance_started"
	EventRealmMaintenanceFinished EventKind = "realm_maintenance_finished"
)

// Event is one commit-triggered notification. Author is the device whose
// command produced it; self-suppression drops it for that device's own
// session (spec.md §4.6).
type Event struct {
	OrganizationID domain.OrganizationID
	Kind           EventKind
	Author         domain.DeviceID
	RealmID        domain.RealmID // zero value when Kind doesn't carry a realm
	Checkpoint     int            // meaningful for EventRealmVlobsUpdated
	Ping           string         // meaningful for EventPinged
	Recipient      domain.UserID  // meaningful for EventMessageReceived
	At             time.Time
}

// EventBus is the single internal publish API both drivers satisfy
// (spec.md §4.9 design note). Publish is called inside the committing
// transaction's caller, after commit succeeds.
type EventBus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(owner domain.DeviceID) *Subscription
	Unsubscribe(sub *Subscription)
}

// Filter is a session's events_subscribe selection: booleans plus
// per-realm/per-topic sets (spec.md §4.6).
type Filter struct {
	Pinged            bool
	MessageReceived   bool
	RealmVlobsUpdated map[domain.RealmID]bool
	RealmRolesUpdated map[domain.RealmID]bool
	RealmMaintenance  map[domain.RealmID]bool
}

func (f Filter) Matches(ev Event) bool {
	switch ev.Kind {
	case EventPinged:
		return f.Pinged
	case EventMessageReceived:
		return f.MessageReceived
	case EventRealmVlobsUpdated:
		return f.RealmVlobsUpdated != nil && f.RealmVlobsUpdated[ev.RealmID]
	case EventRealmRolesUpdated:
		return f.RealmRolesUpdated != nil && f.RealmRolesUpdated[ev.RealmID]
	case EventRealmMaintenanceStarted, EventRealmMaintenanceFinished:
		return f.RealmMaintenance != nil && f.RealmMaintenance[ev.RealmID]
	default:
		return false
	}
}

// Subscription is owned exclusively by one session (spec.md §5). Filter
// may be replaced wholesale by a fresh events_subscribe call.
type Subscription struct {
	Owner   domain.DeviceID
	Filter  Filter
	Pending chan Event
}
