package realm

import (
	"context"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	realms map[domain.RealmID]*domain.Realm
	logs   map[domain.RealmID][]*domain.RoleCertificate
	events *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		realms: map[domain.RealmID]*domain.Realm{},
		logs:   map[domain.RealmID][]*domain.RoleCertificate{},
		events: &fakeBus{},
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
func (t *fakeTx) Devices() ports.DeviceRepo              { return nil }
func (t *fakeTx) Realms() ports.RealmRepo               { return fakeRealmRepo{t.d} }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return nil }
func (t *fakeTx) Messages() ports.MessageRepo           { return nil }

type fakeRealmRepo struct{ d *fakeDriver }

func (r fakeRealmRepo) Create(ctx context.Context, realm *domain.Realm) error {
	r.d.realms[realm.RealmID] = realm
	return nil
}

func (r fakeRealmRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error) {
	realm, ok := r.d.realms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return realm, nil
}

func (r fakeRealmRepo) UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error {
	realm, ok := r.d.realms[id]
	if !ok {
		return domain.ErrNotFound
	}
	realm.Status = status
	return nil
}

func (r fakeRealmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	realm, ok := r.d.realms[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	realm.Checkpoint++
	return realm.Checkpoint, nil
}

func (r fakeRealmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	realm, ok := r.d.realms[id]
	if !ok {
		return domain.ErrNotFound
	}
	realm.EncryptionRevision = rev
	return nil
}

func (r fakeRealmRepo) CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error) {
	roles := map[domain.UserID]domain.Role{}
	for _, cert := range r.d.logs[id] {
		if cert.Role == nil {
			delete(roles, cert.UserID)
		} else {
			roles[cert.UserID] = *cert.Role
		}
	}
	return roles, nil
}

func (r fakeRealmRepo) AppendRoleCertificate(ctx context.Context, cert *domain.RoleCertificate) error {
	r.d.logs[cert.RealmID] = append(r.d.logs[cert.RealmID], cert)
	return nil
}

func (r fakeRealmRepo) RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error) {
	return r.d.logs[id], nil
}

func (r fakeRealmRepo) AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error {
	return nil
}

func (r fakeRealmRepo) ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error) {
	return nil, nil
}
