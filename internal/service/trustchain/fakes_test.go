package trustchain

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// fakeDriver is a minimal in-memory ports.Driver standing in for a real
// storage driver in unit tests, following the hand-written fake style used
// across this codebase's service tests instead of a mocking framework.
type fakeDriver struct {
	org     *domain.Organization
	devices map[domain.DeviceID]*domain.Device
}

func newFakeDriver(org *domain.Organization) *fakeDriver {
	return &fakeDriver{org: org, devices: map[domain.DeviceID]*domain.Device{}}
}

func (d *fakeDriver) BeginTx(ctx context.Context) (ports.Tx, error) { return &fakeTx{d: d}, nil }
func (d *fakeDriver) Events() ports.EventBus                       { return nil }
func (d *fakeDriver) Close() error                                 { return nil }

type fakeTx struct{ d *fakeDriver }

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

func (t *fakeTx) Organizations() ports.OrganizationRepo { return fakeOrgRepo{t.d} }
func (t *fakeTx) Users() ports.UserRepo                 { return nil }
func (t *fakeTx) Devices() ports.DeviceRepo             { return fakeDeviceRepo{t.d} }
func (t *fakeTx) Realms() ports.RealmRepo               { return nil }
func (t *fakeTx) Vlobs() ports.VlobRepo                 { return nil }
func (t *fakeTx) Blocks() ports.BlockRepo               { return nil }
func (t *fakeTx) Messages() ports.MessageRepo           { return nil }

type fakeOrgRepo struct{ d *fakeDriver }

func (r fakeOrgRepo) Create(ctx context.Context, org *domain.Organization) error {
	r.d.org = org
	return nil
}
func (r fakeOrgRepo) Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	if r.d.org == nil || r.d.org.ID != id {
		return nil, domain.ErrNotFound
	}
	return r.d.org, nil
}
func (r fakeOrgRepo) MarkBootstrapped(ctx context.Context, id domain.OrganizationID) error { return nil }
func (r fakeOrgRepo) CreateBootstrapToken(ctx context.Context, tok *domain.BootstrapToken) error {
	return nil
}
func (r fakeOrgRepo) ConsumeBootstrapToken(ctx context.Context, org domain.OrganizationID, token string) (*domain.BootstrapToken, error) {
	return nil, domain.ErrNotFound
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
	out := make([]*domain.Device, 0, len(r.d.devices))
	for _, dev := range r.d.devices {
		out = append(out, dev)
	}
	return out, nil
}
func (r fakeDeviceRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error {
	r.d.devices[id] = revocation
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

// signedDevice builds a Device row whose DeviceCertificate is a valid
// certification signed by certifierKey (nil certifierID means root).
func signedDevice(t interface {
	Helper()
	Fatalf(string, ...interface{})
}, certifierID *domain.DeviceID, certifierKey SigningKey, id domain.DeviceID, verifyKey []byte, createdOn time.Time) *domain.Device {
	t.Helper()
	cert, err := CertifyDevice(certifierKey, id, verifyKey, createdOn)
	if err != nil {
		t.Fatalf("certify device: %v", err)
	}
	return &domain.Device{
		DeviceID:          id,
		CreatedOn:         createdOn,
		DeviceCertifier:   certifierID,
		DeviceCertificate: cert,
		VerifyKey:         verifyKey,
	}
}
