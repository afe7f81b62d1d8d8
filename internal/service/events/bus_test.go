package events

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

func testLogger() *zap.Logger {
	l, _ := zap.NewDevelopment()
	return l
}

func TestPublish_DeliversToMatchingSubscriber(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	sub.Filter = ports.Filter{Pinged: true}

	err := b.Publish(context.Background(), ports.Event{Kind: ports.EventPinged, Author: "bob@phone", Ping: "hi"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case ev := <-sub.Pending:
		if ev.Ping != "hi" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event to be delivered")
	}
}

func TestPublish_SuppressesOwnEvent(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	sub.Filter = ports.Filter{Pinged: true}

	b.Publish(context.Background(), ports.Event{Kind: ports.EventPinged, Author: "alice@laptop", Ping: "hi"})

	select {
	case ev := <-sub.Pending:
		t.Fatalf("expected no event, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_FiltersNonMatchingKind(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	sub.Filter = ports.Filter{Pinged: false, MessageReceived: true}

	b.Publish(context.Background(), ports.Event{Kind: ports.EventPinged, Author: "bob@phone"})

	select {
	case ev := <-sub.Pending:
		t.Fatalf("expected no event, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_RealmScopedFilter(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	realmA := domain.NewRealmID()
	realmB := domain.NewRealmID()
	sub.Filter = ports.Filter{RealmVlobsUpdated: map[domain.RealmID]bool{realmA: true}}

	b.Publish(context.Background(), ports.Event{Kind: ports.EventRealmVlobsUpdated, Author: "bob@phone", RealmID: realmB, Checkpoint: 1})

	select {
	case ev := <-sub.Pending:
		t.Fatalf("expected no event for unsubscribed realm, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	b.Publish(context.Background(), ports.Event{Kind: ports.EventRealmVlobsUpdated, Author: "bob@phone", RealmID: realmA, Checkpoint: 2})

	select {
	case ev := <-sub.Pending:
		if ev.Checkpoint != 2 {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event for subscribed realm")
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	b.Unsubscribe(sub)

	_, ok := <-sub.Pending
	if ok {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestPublish_DropsWhenSubscriberBufferFull(t *testing.T) {
	b := NewBus(testLogger())
	sub := b.Subscribe("alice@laptop")
	sub.Filter = ports.Filter{Pinged: true}

	for i := 0; i < pendingBuffer+5; i++ {
		if err := b.Publish(context.Background(), ports.Event{Kind: ports.EventPinged, Author: "bob@phone"}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	if len(sub.Pending) != pendingBuffer {
		t.Errorf("expected buffer to saturate at %d, got %d", pendingBuffer, len(sub.Pending))
	}
}
