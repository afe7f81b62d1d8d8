package bootstrap

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type fakeDriver struct {
	orgs    map[domain.OrganizationID]*domain.Organization
	tokens  map[string]*domain.BootstrapToken
	users   map[domain.UserID]*domain.User
	devices map[domain.DeviceID]*domain.Device
	events  *fakeBus
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		orgs:    map[domain.OrganizationID]*domain.Organization{},
		tokens:  map[string]*domain.BootstrapToken{},
		users:   map[domain.UserID]*domain.User{},
		devices: map[domain.DeviceID]*domain.Device{},
		events:  &fakeBus{},
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

func (t *fakeTx) Organizations() ports.OrganizationRepo { return fakeOrgRepo{t.d} }
func (t *fakeTx) Users() ports.UserRepo                 { return fakeUserRepo{t.d} }
func (t *fakeTx) Devices() ports.DeviceRepo             { return fakeDeviceRepo{t.d} }
func (t *fakeTx) Realms() ports.RealmRepo               { return nil }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return nil }
func (t *fakeTx) Messages() ports.MessageRepo           { return nil }

type fakeOrgRepo struct{ d *fakeDriver }

func (r fakeOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	r.d.orgs[org.ID] = org
	return nil
}
func (r fakeOrgRepo) Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	org, ok := r.d.orgs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return org, nil
}
func (r fakeOrgRepo) MarkBootstrapped(ctx context.Context, id domain.OrganizationID, rootVerifyKey []byte) error {
	org, ok := r.d.orgs[id]
	if !ok {
		return domain.ErrNotFound
	}
	org.BootstrapDone = true
	org.RootVerifyKey = rootVerifyKey
	return nil
}
func (r fakeOrgRepo) CreateBootstrapToken(ctx context.Context, tok *domain.BootstrapToken) error {
	r.d.tokens[tok.Token] = tok
	return nil
}
func (r fakeOrgRepo) ConsumeBootstrapToken(ctx context.Context, org domain.OrganizationID, token string) (*domain.BootstrapToken, error) {
	tok, ok := r.d.tokens[token]
	if !ok || tok.ConsumedOn != nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	tok.ConsumedOn = &now
	return tok, nil
}

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
	return nil, nil
}
func (r fakeUserRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.UserID, at time.Time) error {
	return nil
}
func (r fakeUserRepo) Count(ctx context.Context, org domain.OrganizationID) (int, int, error) {
	return len(r.d.users), len(r.d.users), nil
}
func (r fakeUserRepo) CreateInvitation(ctx context.Context, inv *domain.UserInvitation) error {
	return nil
}
func (r fakeUserRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.UserInvitation, error) {
	return nil, domain.ErrNotFound
}
func (r fakeUserRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	return nil
}
func (r fakeUserRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
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
	return nil, nil
}
func (r fakeDeviceRepo) ListKnown(ctx context.Context, org domain.OrganizationID) ([]*domain.Device, error) {
	return nil, nil
}
func (r fakeDeviceRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error {
	return nil
}
func (r fakeDeviceRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	return len(r.d.devices), nil
}
func (r fakeDeviceRepo) CreateInvitation(ctx context.Context, inv *domain.DeviceInvitation) error {
	return nil
}
func (r fakeDeviceRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.DeviceInvitation, error) {
	return nil, domain.ErrNotFound
}
func (r fakeDeviceRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	return nil
}
func (r fakeDeviceRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	return nil
}

type fakeRootKeyStore struct {
	verifyKey []byte
	failGen   bool
}

func (f *fakeRootKeyStore) GenerateAndStore(ctx context.Context, org domain.OrganizationID) ([]byte, error) {
	if f.failGen {
		return nil, domain.ErrMaintenanceError
	}
	f.verifyKey = []byte("fake-verify-key")
	return f.verifyKey, nil
}

func (f *fakeRootKeyStore) Sign(ctx context.Context, org domain.OrganizationID, payload []byte) ([]byte, error) {
	return append([]byte("signed:"), payload...), nil
}
