package ports

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// TrustChainVerifier validates certificate payloads against the DAG of
// signed device/user/revocation certificates rooted at the organization's
// root verify key (spec.md §4.1).
type TrustChainVerifier interface {
	VerifyDevice(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.DevicePayload, error)
	VerifyUser(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.UserPayload, error)
	VerifyDeviceRevocation(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.DeviceRevocationPayload, error)
}

// RealmService implements spec.md §4.2.
type RealmService interface {
	Create(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, owner domain.DeviceID, now time.Time) error
	GetRoles(ctx context.Context, org domain.OrganizationID, realm domain.RealmID) (map[domain.UserID]domain.Role, error)
	UpdateRole(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, target domain.UserID, role *domain.Role, signer domain.DeviceID, cert []byte, now time.Time) error
	StartMaintenance(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, kind domain.MaintenanceType, signer domain.DeviceID, encryptionRevision int, now time.Time) error
	FinishMaintenance(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, signer domain.DeviceID, now time.Time) error
	Status(ctx context.Context, org domain.OrganizationID, realm domain.RealmID) (*domain.Realm, error)
}

// VlobService implements spec.md §4.3.
type VlobService interface {
	Create(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, id domain.VlobID, blob []byte, timestamp time.Time, encryptionRevision int, author domain.DeviceID) error
	Read(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version *int, at *time.Time, author domain.DeviceID) (*domain.VlobAtom, error)
	Update(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int, blob []byte, timestamp time.Time, encryptionRevision int, author domain.DeviceID) error
	PollChanges(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, lastCheckpoint int) (int, map[domain.VlobID]int, error)
	ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error)

	MaintenanceGetReencryptionBatch(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, encryptionRevision, size int) ([]*domain.VlobAtom, error)
	MaintenanceSaveReencryptionBatch(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, encryptionRevision int, atoms []*domain.VlobAtom) error
}

// BlockService implements spec.md §4.4.
type BlockService interface {
	Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, realm domain.RealmID, data []byte, author domain.DeviceID) error
	Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID, author domain.DeviceID) ([]byte, error)
}

// MessageService implements spec.md §4.5.
type MessageService interface {
	Send(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, sender domain.DeviceID, body []byte, timestamp time.Time) error
	Get(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error)
}

// IdentityService implements the user/device provisioning commands of
// spec.md §6: invite/claim/create/revoke for both users and devices, plus
// lookup. Claiming an invitation is where a certificate produced by
// TrustChainVerifier is first persisted.
type IdentityService interface {
	GetUser(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error)
	FindUsers(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error)
	InviteUser(ctx context.Context, org domain.OrganizationID, greeter domain.UserID, claimerEmail string, now time.Time) (*domain.UserInvitation, error)
	CancelUserInvitation(ctx context.Context, org domain.OrganizationID, token string) error
	CreateUser(ctx context.Context, org domain.OrganizationID, inviteToken string, user *domain.User, firstDevice *domain.Device, now time.Time) error
	RevokeUser(ctx context.Context, org domain.OrganizationID, id domain.UserID, revoker domain.DeviceID, now time.Time) error

	InviteDevice(ctx context.Context, org domain.OrganizationID, greeter domain.UserID, now time.Time) (*domain.DeviceInvitation, error)
	CancelDeviceInvitation(ctx context.Context, org domain.OrganizationID, token string) error
	CreateDevice(ctx context.Context, org domain.OrganizationID, inviteToken string, device *domain.Device, now time.Time) error
	RevokeDevice(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device, now time.Time) error

	OrganizationStats(ctx context.Context, org domain.OrganizationID) (*OrganizationStats, error)
}

// OrganizationStats answers organization_stats (spec.md §6).
type OrganizationStats struct {
	Users       int
	ActiveUsers int
	Devices     int
	Realms      int
}

// BootstrapService implements the anonymous organization_bootstrap
// command (spec.md §6, underspecified there; see SPEC_FULL.md §3.10):
// mints the organization's root keypair, consumes its one-time bootstrap
// token, and roots the trust chain with the first user/device pair.
type BootstrapService interface {
	Bootstrap(ctx context.Context, org domain.OrganizationID, token string, rootUser *domain.User, rootDevice *domain.Device, now time.Time) error
}
