package message

import (
	"context"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	messages map[domain.UserID][]*domain.Message
	events   *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		messages: map[domain.UserID][]*domain.Message{},
		events:   &fakeBus{},
	}
}

func (d *fakeDriver) BeginTx(ctx context.Context) (ports.Tx, error) { return &fakeTx{d: d}, nil }
func (d *fakeDriver) Events() ports.EventBus                       { return d.events }
func (d *fakeDriver) Close() error                                 { return nil }

type fakeBus struct{ published []ports.Event }

func (b *fakeBus) Publish(ctx context.Context, ev ports.Event) error {
	b.published = append(b.published, ev)
	return nil
}
func (b *fakeBus) Subscribe(owner domain.DeviceID) *ports.Subscription { return nil }
func (b *fakeBus) Unsubscribe(sub *ports.Subscription)                 {}

type fakeTx struct{ d *fakeDriver }

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

func (t *fakeTx) Organizations() ports.OrganizationRepo { return nil }
func (t *fakeTx) Users() ports.UserRepo                 { return nil }
func (t *fakeTx) Devices() ports.DeviceRepo             { return nil }
func (t *fakeTx) Realms() ports.RealmRepo               { return nil }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return nil }
func (t *fakeTx) Messages() ports.MessageRepo           { return fakeMessageRepo{t.d} }

type fakeMessageRepo struct{ d *fakeDriver }

func (r fakeMessageRepo) Append(ctx context.Context, m *domain.Message) (int, error) {
	m.Index = len(r.d.messages[m.Recipient]) + 1
	r.d.messages[m.Recipient] = append(r.d.messages[m.Recipient], m)
	return m.Index, nil
}

func (r fakeMessageRepo) Since(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error) {
	var out []*domain.Message
	for _, m := range r.d.messages[recipient] {
		if m.Index > offset {
			out = append(out, m)
		}
	}
	return out, nil
}
