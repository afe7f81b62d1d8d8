package block

import (
	"context"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	realms map[domain.RealmID]*domain.Realm
	roles  map[domain.RealmID]map[domain.UserID]domain.Role
	metas  map[domain.BlockID]*domain.Block
	events *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		realms: map[domain.RealmID]*domain.Realm{},
		roles:  map[domain.RealmID]map[domain.UserID]domain.Role{},
		metas:  map[domain.BlockID]*domain.Block{},
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
func (t *fakeTx) Devices() ports.DeviceRepo             { return nil }
func (t *fakeTx) Realms() ports.RealmRepo               { return fakeRealmRepo{t.d} }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return fakeBlockRepo{t.d} }
func (t *fakeTx) Messages() ports.MessageRepo           { return nil }

type fakeRealmRepo struct{ d *fakeDriver }

func (r fakeRealmRepo) Create(ctx context.Context, realm *domain.Realm) error { return nil }
func (r fakeRealmRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error) {
	realm, ok := r.d.realms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return realm, nil
}
func (r fakeRealmRepo) UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error {
	r.d.realms[id].Status = status
	return nil
}
func (r fakeRealmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	return 0, nil
}
func (r fakeRealmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	return nil
}
func (r fakeRealmRepo) CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error) {
	return r.d.roles[id], nil
}
func (r fakeRealmRepo) AppendRoleCertificate(ctx context.Context, cert *domain.RoleCertificate) error {
	return nil
}
func (r fakeRealmRepo) RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error) {
	return nil, nil
}
func (r fakeRealmRepo) AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error {
	return nil
}
func (r fakeRealmRepo) ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error) {
	return nil, nil
}

type fakeBlockRepo struct{ d *fakeDriver }

func (r fakeBlockRepo) CreateMeta(ctx context.Context, b *domain.Block) error {
	r.d.metas[b.BlockID] = b
	return nil
}
func (r fakeBlockRepo) DeleteMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) error {
	delete(r.d.metas, id)
	return nil
}
func (r fakeBlockRepo) GetMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) (*domain.Block, error) {
	meta, ok := r.d.metas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return meta, nil
}

type fakeBlockStore struct {
	data      map[domain.BlockID][]byte
	failWrite bool
}

func newFakeBlockStore() *fakeBlockStore { return &fakeBlockStore{data: map[domain.BlockID][]byte{}} }

func (f *fakeBlockStore) Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, data []byte) error {
	if f.failWrite {
		return domain.ErrMaintenanceError
	}
	f.data[id] = data
	return nil
}
func (f *fakeBlockStore) Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID) ([]byte, error) {
	data, ok := f.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}
