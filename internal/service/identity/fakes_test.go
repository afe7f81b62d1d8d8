package identity

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	users       map[domain.UserID]*domain.User
	userInvites map[string]*domain.UserInvitation
	devices     map[domain.DeviceID]*domain.Device
	devInvites  map[string]*domain.DeviceInvitation
	realmCount  int
	events      *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		users:       map[domain.UserID]*domain.User{},
		userInvites: map[string]*domain.UserInvitation{},
		devices:     map[domain.DeviceID]*domain.Device{},
		devInvites:  map[string]*domain.DeviceInvitation{},
		events:      &fakeBus{},
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
func (t *fakeTx) Users() ports.UserRepo                 { return fakeUserRepo{t.d} }
func (t *fakeTx) Devices() ports.DeviceRepo             { return fakeDeviceRepo{t.d} }
func (t *fakeTx) Realms() ports.RealmRepo               { return fakeRealmRepo{t.d} }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return nil }
func (t *fakeTx) Messages() ports.MessageRepo           { return nil }

type fakeUserRepo struct{ d *fakeDriver }

func (r fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.d.users[u.UserID] = u
	return nil
}
func (r fakeUserRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error) {
	u, ok := r.d.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}
func (r fakeUserRepo) Find(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.d.users {
		out = append(out, u)
	}
	return out, nil
}
func (r fakeUserRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.UserID, at time.Time) error {
	u, ok := r.d.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.RevokedOn = &at
	return nil
}
func (r fakeUserRepo) Count(ctx context.Context, org domain.OrganizationID) (int, int, error) {
	total, active := 0, 0
	for _, u := range r.d.users {
		total++
		if u.RevokedOn == nil {
			active++
		}
	}
	return total, active, nil
}
func (r fakeUserRepo) CreateInvitation(ctx context.Context, inv *domain.UserInvitation) error {
	r.d.userInvites[inv.Token] = inv
	return nil
}
func (r fakeUserRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.UserInvitation, error) {
	inv, ok := r.d.userInvites[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
func (r fakeUserRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	now := time.Now()
	r.d.userInvites[token].CancelledOn = &now
	return nil
}
func (r fakeUserRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	now := time.Now()
	r.d.userInvites[token].ClaimedOn = &now
	return nil
}

type fakeDeviceRepo struct{ d *fakeDriver }

func (r fakeDeviceRepo) Create(ctx context.Context, dev *domain.Device) error {
	r.d.devices[dev.DeviceID] = dev
	return nil
}
func (r fakeDeviceRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.DeviceID) (*domain.Device, error) {
	dev, ok := r.d.devices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return dev, nil
}
func (r fakeDeviceRepo) ListByUser(ctx context.Context, org domain.OrganizationID, user domain.UserID) ([]*domain.Device, error) {
	var out []*domain.Device
	for _, dev := range r.d.devices {
		if dev.DeviceID.UserID() == user {
			out = append(out, dev)
		}
	}
	return out, nil
}
func (r fakeDeviceRepo) ListKnown(ctx context.Context, org domain.OrganizationID) ([]*domain.Device, error) {
	var out []*domain.Device
	for _, dev := range r.d.devices {
		out = append(out, dev)
	}
	return out, nil
}
func (r fakeDeviceRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error {
	dev, ok := r.d.devices[id]
	if !ok {
		return domain.ErrNotFound
	}
	dev.RevokedOn = revocation.RevokedOn
	dev.RevocationCertifier = revocation.RevocationCertifier
	dev.RevokedDeviceCertificate = revocation.RevokedDeviceCertificate
	return nil
}
func (r fakeDeviceRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	return len(r.d.devices), nil
}
func (r fakeDeviceRepo) CreateInvitation(ctx context.Context, inv *domain.DeviceInvitation) error {
	r.d.devInvites[inv.Token] = inv
	return nil
}
func (r fakeDeviceRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.DeviceInvitation, error) {
	inv, ok := r.d.devInvites[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}
func (r fakeDeviceRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	now := time.Now()
	r.d.devInvites[token].CancelledOn = &now
	return nil
}
func (r fakeDeviceRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	now := time.Now()
	r.d.devInvites[token].ClaimedOn = &now
	return nil
}

type fakeRealmRepo struct{ d *fakeDriver }

func (r fakeRealmRepo) Create(ctx context.Context, realm *domain.Realm) error { return nil }
func (r fakeRealmRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error) {
	return nil, domain.ErrNotFound
}
func (r fakeRealmRepo) UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error {
	return nil
}
func (r fakeRealmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	return 0, nil
}
func (r fakeRealmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	return nil
}
func (r fakeRealmRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	return r.d.realmCount, nil
}
func (r fakeRealmRepo) CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error) {
	return nil, nil
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
