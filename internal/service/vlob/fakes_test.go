package vlob

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	realms  map[domain.RealmID]*domain.Realm
	roles   map[domain.RealmID]map[domain.UserID]domain.Role
	logs    map[domain.RealmID][]*domain.RealmVlobUpdate
	vlobs   map[domain.VlobID]*domain.Vlob
	atoms   map[domain.VlobID][]*domain.VlobAtom
	events  *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		realms: map[domain.RealmID]*domain.Realm{},
		roles:  map[domain.RealmID]map[domain.UserID]domain.Role{},
		logs:   map[domain.RealmID][]*domain.RealmVlobUpdate{},
		vlobs:  map[domain.VlobID]*domain.Vlob{},
		atoms:  map[domain.VlobID][]*domain.VlobAtom{},
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
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return fakeVlobRepo{t.d} }
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
	r.d.realms[id].Status = status
	return nil
}
func (r fakeRealmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	r.d.realms[id].Checkpoint++
	return r.d.realms[id].Checkpoint, nil
}
func (r fakeRealmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	r.d.realms[id].EncryptionRevision = rev
	return nil
}
func (r fakeRealmRepo) CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error) {
	return r.d.roles[id], nil
}
func (r fakeRealmRepo) AppendRoleCertificate(ctx context.Context, cert *domain.RoleCertificate) error {
	if r.d.roles[cert.RealmID] == nil {
		r.d.roles[cert.RealmID] = map[domain.UserID]domain.Role{}
	}
	if cert.Role == nil {
		delete(r.d.roles[cert.RealmID], cert.UserID)
	} else {
		r.d.roles[cert.RealmID][cert.UserID] = *cert.Role
	}
	return nil
}
func (r fakeRealmRepo) RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error) {
	return nil, nil
}
func (r fakeRealmRepo) AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error {
	r.d.logs[entry.RealmID] = append(r.d.logs[entry.RealmID], entry)
	return nil
}
func (r fakeRealmRepo) ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error) {
	var out []*domain.RealmVlobUpdate
	for _, e := range r.d.logs[id] {
		if e.Checkpoint > checkpoint {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeVlobRepo struct{ d *fakeDriver }

func (r fakeVlobRepo) Create(ctx context.Context, v *domain.Vlob, atom *domain.VlobAtom) error {
	r.d.vlobs[v.VlobID] = v
	r.d.atoms[v.VlobID] = []*domain.VlobAtom{atom}
	return nil
}
func (r fakeVlobRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (*domain.Vlob, error) {
	v, ok := r.d.vlobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}
func (r fakeVlobRepo) AppendAtom(ctx context.Context, atom *domain.VlobAtom) error {
	existing := r.d.atoms[atom.VlobID]
	if len(existing) != atom.Version-1 {
		return domain.ErrBadVersion
	}
	r.d.atoms[atom.VlobID] = append(existing, atom)
	return nil
}
func (r fakeVlobRepo) MaxVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (int, error) {
	return len(r.d.atoms[id]), nil
}
func (r fakeVlobRepo) ReadVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int) (*domain.VlobAtom, error) {
	atoms := r.d.atoms[id]
	if version < 1 || version > len(atoms) {
		return nil, domain.ErrBadVersion
	}
	return atoms[version-1], nil
}
func (r fakeVlobRepo) ReadAtTimestamp(ctx context.Context, org domain.OrganizationID, id domain.VlobID, at time.Time) (*domain.VlobAtom, error) {
	atoms := r.d.atoms[id]
	var best *domain.VlobAtom
	for _, a := range atoms {
		if !a.Timestamp.After(at) && (best == nil || a.Timestamp.After(best.Timestamp)) {
			best = a
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}
func (r fakeVlobRepo) ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error) {
	return r.d.atoms[id], nil
}
func (r fakeVlobRepo) ListForReencryption(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, oldRevision, size int) ([]*domain.VlobAtom, error) {
	return nil, nil
}
func (r fakeVlobRepo) SaveReencryptedAtom(ctx context.Context, atom *domain.VlobAtom) error {
	return nil
}
