package postgres

import (
	"testing"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

func TestEncodeDecodeRelayEvent_RoundTrips(t *testing.T) {
	realm := domain.NewRealmID()
	ev := ports.Event{
		OrganizationID: "acme",
		Kind:           ports.EventRealmVlobsUpdated,
		Author:         "alice@laptop",
		RealmID:        realm,
		Checkpoint:     3,
		At:             time.Now().UTC().Truncate(time.Microsecond),
	}

	payload, err := encodeRelayEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRelayEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.OrganizationID != ev.OrganizationID || got.Kind != ev.Kind || got.Author != ev.Author ||
		got.RealmID != ev.RealmID || got.Checkpoint != ev.Checkpoint || !got.At.Equal(ev.At) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, ev)
	}
}

func TestEncodeRelayEvent_OmitsZeroRealmID(t *testing.T) {
	ev := ports.Event{OrganizationID: "acme", Kind: ports.EventPinged, Ping: "hi", At: time.Now()}

	payload, err := encodeRelayEvent(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := decodeRelayEvent(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var zero domain.RealmID
	if got.RealmID != zero {
		t.Errorf("expected zero RealmID, got %v", got.RealmID)
	}
	if got.Ping != "hi" {
		t.Errorf("expected ping payload to survive, got %q", got.Ping)
	}
}
