// Package session implements the command dispatcher of spec.md §6:
// "replace the source's open dispatch table with a tagged-union command
// enum; exhaustive match guarantees no command silently mis-routes."
package session

import (
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// CommandKind enumerates every wire command of spec.md §6, authenticated
// and anonymous.
type CommandKind string

const (
	CmdPing                       CommandKind = "ping"
	CmdEventsSubscribe            CommandKind = "events_subscribe"
	CmdEventsListen               CommandKind = "events_listen"
	CmdMessageSend                CommandKind = "message_send"
	CmdMessageGet                 CommandKind = "message_get"
	CmdVlobCreate                 CommandKind = "vlob_create"
	CmdVlobRead                   CommandKind = "vlob_read"
	CmdVlobUpdate                 CommandKind = "vlob_update"
	CmdVlobPollChanges            CommandKind = "vlob_poll_changes"
	CmdVlobListVersions           CommandKind = "vlob_list_versions"
	CmdVlobMaintenanceGetBatch    CommandKind = "vlob_maintenance_get_reencryption_batch"
	CmdVlobMaintenanceSaveBatch   CommandKind = "vlob_maintenance_save_reencryption_batch"
	CmdRealmCreate                CommandKind = "realm_create"
	CmdRealmStatus                CommandKind = "realm_status"
	CmdRealmGetRoleCertificates   CommandKind = "realm_get_role_certificates"
	CmdRealmUpdateRoles           CommandKind = "realm_update_roles"
	CmdRealmStartMaintenance      CommandKind = "realm_start_reencryption_maintenance"
	CmdRealmFinishMaintenance     CommandKind = "realm_finish_reencryption_maintenance"
	CmdBlockCreate                CommandKind = "block_create"
	CmdBlockRead                  CommandKind = "block_read"
	CmdUserGet                    CommandKind = "user_get"
	CmdUserFind                   CommandKind = "user_find"
	CmdUserInvite                 CommandKind = "user_invite"
	CmdUserCancelInvitation       CommandKind = "user_cancel_invitation"
	CmdUserCreate                 CommandKind = "user_create"
	CmdUserRevoke                 CommandKind = "user_revoke"
	CmdDeviceInvite               CommandKind = "device_invite"
	CmdDeviceCancelInvitation     CommandKind = "device_cancel_invitation"
	CmdDeviceCreate               CommandKind = "device_create"
	CmdOrganizationStats          CommandKind = "organization_stats"
	CmdOrganizationBootstrap      CommandKind = "organization_bootstrap"
	CmdUserGetInvitationCreator   CommandKind = "user_get_invitation_creator"
	CmdUserClaim                  CommandKind = "user_claim"
	CmdDeviceGetInvitationCreator CommandKind = "device_get_invitation_creator"
	CmdDeviceClaim                CommandKind = "device_claim"
)

// Command is a sealed sum type: only structs in this package implement it.
type Command interface {
	Kind() CommandKind
	sealed()
}

type base struct{}

func (base) sealed() {}

type PingCmd struct {
	base
	Ping string
}

func (PingCmd) Kind() CommandKind { return CmdPing }

type EventsSubscribeCmd struct {
	base
	Filter Filter
}

func (EventsSubscribeCmd) Kind() CommandKind { return CmdEventsSubscribe }

// Filter mirrors ports.Filter at the wire boundary, decoupling the
// dispatcher's command shapes from the event bus's internal type.
type Filter struct {
	Pinged            bool
	MessageReceived   bool
	RealmVlobsUpdated map[domain.RealmID]bool
	RealmRolesUpdated map[domain.RealmID]bool
	RealmMaintenance  map[domain.RealmID]bool
}

type EventsListenCmd struct {
	base
	Wait bool // true = blocking mode, suspend until an event arrives
}

func (EventsListenCmd) Kind() CommandKind { return CmdEventsListen }

type MessageSendCmd struct {
	base
	Recipient domain.UserID
	Body      []byte
	Timestamp time.Time
}

func (MessageSendCmd) Kind() CommandKind { return CmdMessageSend }

type MessageGetCmd struct {
	base
	Offset int
}

func (MessageGetCmd) Kind() CommandKind { return CmdMessageGet }

type VlobCreateCmd struct {
	base
	RealmID            domain.RealmID
	VlobID             domain.VlobID
	Blob               []byte
	Timestamp          time.Time
	EncryptionRevision int
}

func (VlobCreateCmd) Kind() CommandKind { return CmdVlobCreate }

type VlobReadCmd struct {
	base
	VlobID  domain.VlobID
	Version *int
	At      *time.Time
}

func (VlobReadCmd) Kind() CommandKind { return CmdVlobRead }

type VlobUpdateCmd struct {
	base
	VlobID             domain.VlobID
	Version            int
	Blob               []byte
	Timestamp          time.Time
	EncryptionRevision int
}

func (VlobUpdateCmd) Kind() CommandKind { return CmdVlobUpdate }

type VlobPollChangesCmd struct {
	base
	RealmID        domain.RealmID
	LastCheckpoint int
}

func (VlobPollChangesCmd) Kind() CommandKind { return CmdVlobPollChanges }

type VlobListVersionsCmd struct {
	base
	VlobID domain.VlobID
}

func (VlobListVersionsCmd) Kind() CommandKind { return CmdVlobListVersions }

type VlobMaintenanceGetBatchCmd struct {
	base
	RealmID            domain.RealmID
	EncryptionRevision int
	Size               int
}

func (VlobMaintenanceGetBatchCmd) Kind() CommandKind { return CmdVlobMaintenanceGetBatch }

type VlobMaintenanceSaveBatchCmd struct {
	base
	RealmID            domain.RealmID
	EncryptionRevision int
	Atoms              []*domain.VlobAtom
}

func (VlobMaintenanceSaveBatchCmd) Kind() CommandKind { return CmdVlobMaintenanceSaveBatch }

type RealmCreateCmd struct {
	base
	RealmID domain.RealmID
}

func (RealmCreateCmd) Kind() CommandKind { return CmdRealmCreate }

type RealmStatusCmd struct {
	base
	RealmID domain.RealmID
}

func (RealmStatusCmd) Kind() CommandKind { return CmdRealmStatus }

type RealmGetRoleCertificatesCmd struct {
	base
	RealmID domain.RealmID
}

func (RealmGetRoleCertificatesCmd) Kind() CommandKind { return CmdRealmGetRoleCertificates }

type RealmUpdateRolesCmd struct {
	base
	RealmID     domain.RealmID
	Target      domain.UserID
	Role        *domain.Role
	Certificate []byte
}

func (RealmUpdateRolesCmd) Kind() CommandKind { return CmdRealmUpdateRoles }

type RealmStartMaintenanceCmd struct {
	base
	RealmID            domain.RealmID
	EncryptionRevision int
}

func (RealmStartMaintenanceCmd) Kind() CommandKind { return CmdRealmStartMaintenance }

type RealmFinishMaintenanceCmd struct {
	base
	RealmID domain.RealmID
}

func (RealmFinishMaintenanceCmd) Kind() CommandKind { return CmdRealmFinishMaintenance }

type BlockCreateCmd struct {
	base
	BlockID domain.BlockID
	RealmID domain.RealmID
	Data    []byte
}

func (BlockCreateCmd) Kind() CommandKind { return CmdBlockCreate }

type BlockReadCmd struct {
	base
	BlockID domain.BlockID
}

func (BlockReadCmd) Kind() CommandKind { return CmdBlockRead }

type UserGetCmd struct {
	base
	UserID domain.UserID
}

func (UserGetCmd) Kind() CommandKind { return CmdUserGet }

type UserFindCmd struct {
	base
	Query string
}

func (UserFindCmd) Kind() CommandKind { return CmdUserFind }

type UserInviteCmd struct {
	base
	ClaimerEmail string
}

func (UserInviteCmd) Kind() CommandKind { return CmdUserInvite }

type UserCancelInvitationCmd struct {
	base
	Token string
}

func (UserCancelInvitationCmd) Kind() CommandKind { return CmdUserCancelInvitation }

type UserCreateCmd struct {
	base
	InviteToken string
	User        *domain.User
	FirstDevice *domain.Device
}

func (UserCreateCmd) Kind() CommandKind { return CmdUserCreate }

type UserRevokeCmd struct {
	base
	UserID domain.UserID
}

func (UserRevokeCmd) Kind() CommandKind { return CmdUserRevoke }

type DeviceInviteCmd struct{ base }

func (DeviceInviteCmd) Kind() CommandKind { return CmdDeviceInvite }

type DeviceCancelInvitationCmd struct {
	base
	Token string
}

func (DeviceCancelInvitationCmd) Kind() CommandKind { return CmdDeviceCancelInvitation }

type DeviceCreateCmd struct {
	base
	InviteToken string
	Device      *domain.Device
}

func (DeviceCreateCmd) Kind() CommandKind { return CmdDeviceCreate }

type OrganizationStatsCmd struct{ base }

func (OrganizationStatsCmd) Kind() CommandKind { return CmdOrganizationStats }

// Anonymous commands. These run before a Session has an authenticated
// device identity, so AnonymousDispatcher routes them instead of
// Dispatcher (SPEC_FULL.md §3.9).

type OrganizationBootstrapCmd struct {
	base
	Token       string
	RootUser    *domain.User
	RootDevice  *domain.Device
}

func (OrganizationBootstrapCmd) Kind() CommandKind { return CmdOrganizationBootstrap }

type UserGetInvitationCreatorCmd struct {
	base
	Token string
}

func (UserGetInvitationCreatorCmd) Kind() CommandKind { return CmdUserGetInvitationCreator }

type UserClaimCmd struct {
	base
	Token       string
	User        *domain.User
	FirstDevice *domain.Device
}

func (UserClaimCmd) Kind() CommandKind { return CmdUserClaim }

type DeviceGetInvitationCreatorCmd struct {
	base
	Token string
}

func (DeviceGetInvitationCreatorCmd) Kind() CommandKind { return CmdDeviceGetInvitationCreator }

type DeviceClaimCmd struct {
	base
	Token  string
	Device *domain.Device
}

func (DeviceClaimCmd) Kind() CommandKind { return CmdDeviceClaim }

type AnonymousPingCmd struct {
	base
	Ping string
}

func (AnonymousPingCmd) Kind() CommandKind { return CmdPing }
