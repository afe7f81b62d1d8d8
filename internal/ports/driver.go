// Package ports declares the contracts the storage-driver abstraction
// (spec.md §4.7), blockstore, and event bus must satisfy. Engines in
// internal/service depend only on these interfaces, never on a concrete
// driver, so the in-memory and relational drivers are interchangeable.
package ports

import (
	"context"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// Driver is the uniform contract both the in-memory and relational drivers
// implement. Every command-level operation runs inside exactly one Tx.
type Driver interface {
	// BeginTx opens a transactional context. All writes performed through
	// the returned Tx are invisible to other transactions until Commit,
	// and fully discarded on Rollback or on ctx cancellation propagating
	// through a not-yet-committed Tx (spec.md §5, cancellation).
	BeginTx(ctx context.Context) (Tx, error)

	// Events returns this driver's event publish/subscribe surface. The
	// in-memory driver's bus is process-local; the relational driver
	// additionally relays across processes via the database's native
	// notification channel (spec.md §4.6, §4.9).
	Events() EventBus

	Close() error
}

// Tx bundles the per-entity repositories reachable within one transaction.
type Tx interface {
	Commit() error
	Rollback() error

	Organizations() OrganizationRepo
	Users() UserRepo
	Devices() DeviceRepo
	Realms() RealmRepo
	Vlobs() VlobRepo
	Blocks() BlockRepo
	Messages() MessageRepo
}

type OrganizationRepo interface {
	Create(ctx context.Context, org *domain.Organization) error
	Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error)
	MarkBootstrapped(ctx context.Context, id domain.OrganizationID, rootVerifyKey []byte) error

	CreateBootstrapToken(ctx context.Context, tok *domain.BootstrapToken) error
	ConsumeBootstrapToken(ctx context.Context, org domain.OrganizationID, token string) (*domain.BootstrapToken, error)
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error)
	Find(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error)
	Revoke(ctx context.Context, org domain.OrganizationID, id domain.UserID, at time.Time) error
	// Count reports (total, active) users, feeding organization_stats.
	Count(ctx context.Context, org domain.OrganizationID) (total, active int, err error)

	CreateInvitation(ctx context.Context, inv *domain.UserInvitation) error
	GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.UserInvitation, error)
	CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error
	ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error
}

type DeviceRepo interface {
	Create(ctx context.Context, d *domain.Device) error
	Get(ctx context.Context, org domain.OrganizationID, id domain.DeviceID) (*domain.Device, error)
	ListByUser(ctx context.Context, org domain.OrganizationID, user domain.UserID) ([]*domain.Device, error)
	// ListKnown returns every device of the organization: the "known
	// devices" set the trust-chain verifier resolves signers against
	// (spec.md §4.1).
	ListKnown(ctx context.Context, org domain.OrganizationID) ([]*domain.Device, error)
	Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error
	// Count reports the total device count, feeding organization_stats.
	Count(ctx context.Context, org domain.OrganizationID) (int, error)

	CreateInvitation(ctx context.Context, inv *domain.DeviceInvitation) error
	GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.DeviceInvitation, error)
	CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error
	ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error
}

type RealmRepo interface {
	Create(ctx context.Context, r *domain.Realm) error
	Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error)
	UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error
	// IncrementCheckpoint atomically bumps the realm's checkpoint and
	// returns the new value; callers append the matching RealmVlobUpdate
	// row within the same Tx.
	IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error)
	SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error
	// Count reports the total realm count, feeding organization_stats.
	Count(ctx context.Context, org domain.OrganizationID) (int, error)

	CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error)
	AppendRoleCertificate(ctx context.Context, cert *domain.RoleCertificate) error
	RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error)

	AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error
	ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error)
}

type VlobRepo interface {
	Create(ctx context.Context, v *domain.Vlob, atom *domain.VlobAtom) error
	Get(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (*domain.Vlob, error)
	// AppendAtom performs the conditional insert at the heart of spec.md
	// §4.3's optimistic-concurrency contract: it must fail with
	// domain.ErrBadVersion, not a generic driver error, if atom.Version !=
	// MaxVersion(atom.VlobID)+1.
	AppendAtom(ctx context.Context, atom *domain.VlobAtom) error
	MaxVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (int, error)
	ReadVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int) (*domain.VlobAtom, error)
	ReadAtTimestamp(ctx context.Context, org domain.OrganizationID, id domain.VlobID, at time.Time) (*domain.VlobAtom, error)
	ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error)

	// ListForReencryption returns up to size atoms of the realm still at
	// oldRevision, ordered for batch migration.
	ListForReencryption(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, oldRevision, size int) ([]*domain.VlobAtom, error)
	SaveReencryptedAtom(ctx context.Context, atom *domain.VlobAtom) error
}

type BlockRepo interface {
	CreateMeta(ctx context.Context, b *domain.Block) error
	DeleteMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) error
	GetMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) (*domain.Block, error)
}

type MessageRepo interface {
	Append(ctx context.Context, m *domain.Message) (int, error)
	Since(ctx context.Context, org domain.OrganizationID, recipient domain.UserID, offset int) ([]*domain.Message, error)
}
