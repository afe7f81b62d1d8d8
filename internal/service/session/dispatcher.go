package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// Session is owned exclusively by one connection, never shared across
// goroutines. It holds the authenticated device identity and the
// connection's live event subscription.
type Session struct {
	Org          domain.OrganizationID
	Device       domain.DeviceID
	Subscription *ports.Subscription
}

// Dispatcher is one switch over CommandKind covering the authenticated
// command list of spec.md §6. Go does not check the switch for
// exhaustiveness; an unhandled kind reaches the default case.
type Dispatcher struct {
	Realm      ports.RealmService
	Vlob       ports.VlobService
	Block      ports.BlockService
	Message    ports.MessageService
	Identity   ports.IdentityService
	TrustChain ports.TrustChainVerifier
	Events     ports.EventBus
	Now        func() time.Time
	Log        *zap.Logger
}

// allKinds lists every CommandKind that Dispatcher.Dispatch and
// AnonymousDispatcher.Dispatch together route; nothing checks it against
// the switch cases at build time.
var allKinds = [...]CommandKind{
	CmdPing, CmdEventsSubscribe, CmdEventsListen, CmdMessageSend, CmdMessageGet,
	CmdVlobCreate, CmdVlobRead, CmdVlobUpdate, CmdVlobPollChanges, CmdVlobListVersions,
	CmdVlobMaintenanceGetBatch, CmdVlobMaintenanceSaveBatch,
	CmdRealmCreate, CmdRealmStatus, CmdRealmGetRoleCertificates, CmdRealmUpdateRoles,
	CmdRealmStartMaintenance, CmdRealmFinishMaintenance,
	CmdBlockCreate, CmdBlockRead,
	CmdUserGet, CmdUserFind, CmdUserInvite, CmdUserCancelInvitation, CmdUserCreate, CmdUserRevoke,
	CmdDeviceInvite, CmdDeviceCancelInvitation, CmdDeviceCreate,
	CmdOrganizationStats,
	CmdOrganizationBootstrap, CmdUserGetInvitationCreator, CmdUserClaim,
	CmdDeviceGetInvitationCreator, CmdDeviceClaim,
}

// Dispatch routes one authenticated command. The default case logs the
// kind and returns invalid_data.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, cmd Command) Response {
	switch c := cmd.(type) {
	case PingCmd:
		return ok(c.Ping)

	case EventsSubscribeCmd:
		sess.Subscription.Filter = ports.Filter{
			Pinged:            c.Filter.Pinged,
			MessageReceived:   c.Filter.MessageReceived,
			RealmVlobsUpdated: c.Filter.RealmVlobsUpdated,
			RealmRolesUpdated: c.Filter.RealmRolesUpdated,
			RealmMaintenance:  c.Filter.RealmMaintenance,
		}
		return ok(nil)

	case EventsListenCmd:
		select {
		case ev, isOpen := <-sess.Subscription.Pending:
			if !isOpen {
				return errResponse(domain.ErrNoEvents)
			}
			return ok(ev)
		default:
			if !c.Wait {
				return errResponse(domain.ErrNoEvents)
			}
			select {
			case ev := <-sess.Subscription.Pending:
				return ok(ev)
			case <-ctx.Done():
				return errResponse(domain.ErrNoEvents)
			}
		}

	case MessageSendCmd:
		err := d.Message.Send(ctx, sess.Org, c.Recipient, sess.Device, c.Body, c.Timestamp)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case MessageGetCmd:
		msgs, err := d.Message.Get(ctx, sess.Org, sess.Device.UserID(), c.Offset)
		if err != nil {
			return errResponse(err)
		}
		return ok(msgs)

	case VlobCreateCmd:
		err := d.Vlob.Create(ctx, sess.Org, c.RealmID, c.VlobID, c.Blob, c.Timestamp, c.EncryptionRevision, sess.Device)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case VlobReadCmd:
		atom, err := d.Vlob.Read(ctx, sess.Org, c.VlobID, c.Version, c.At, sess.Device)
		if err != nil {
			return errResponse(err)
		}
		return ok(atom)

	case VlobUpdateCmd:
		err := d.Vlob.Update(ctx, sess.Org, c.VlobID, c.Version, c.Blob, c.Timestamp, c.EncryptionRevision, sess.Device)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case VlobPollChangesCmd:
		checkpoint, changes, err := d.Vlob.PollChanges(ctx, sess.Org, c.RealmID, c.LastCheckpoint)
		if err != nil {
			return errResponse(err)
		}
		return ok(struct {
			Checkpoint int
			Changes    map[domain.VlobID]int
		}{checkpoint, changes})

	case VlobListVersionsCmd:
		versions, err := d.Vlob.ListVersions(ctx, sess.Org, c.VlobID)
		if err != nil {
			return errResponse(err)
		}
		return ok(versions)

	case VlobMaintenanceGetBatchCmd:
		atoms, err := d.Vlob.MaintenanceGetReencryptionBatch(ctx, sess.Org, c.RealmID, c.EncryptionRevision, c.Size)
		if err != nil {
			return errResponse(err)
		}
		return ok(atoms)

	case VlobMaintenanceSaveBatchCmd:
		err := d.Vlob.MaintenanceSaveReencryptionBatch(ctx, sess.Org, c.RealmID, c.EncryptionRevision, c.Atoms)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case RealmCreateCmd:
		err := d.Realm.Create(ctx, sess.Org, c.RealmID, sess.Device, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case RealmStatusCmd:
		realm, err := d.Realm.Status(ctx, sess.Org, c.RealmID)
		if err != nil {
			return errResponse(err)
		}
		return ok(realm)

	case RealmGetRoleCertificatesCmd:
		roles, err := d.Realm.GetRoles(ctx, sess.Org, c.RealmID)
		if err != nil {
			return errResponse(err)
		}
		return ok(roles)

	case RealmUpdateRolesCmd:
		err := d.Realm.UpdateRole(ctx, sess.Org, c.RealmID, c.Target, c.Role, sess.Device, c.Certificate, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case RealmStartMaintenanceCmd:
		err := d.Realm.StartMaintenance(ctx, sess.Org, c.RealmID, domain.MaintenanceReencryption, sess.Device, c.EncryptionRevision, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case RealmFinishMaintenanceCmd:
		err := d.Realm.FinishMaintenance(ctx, sess.Org, c.RealmID, sess.Device, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case BlockCreateCmd:
		err := d.Block.Create(ctx, sess.Org, c.BlockID, c.RealmID, c.Data, sess.Device)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case BlockReadCmd:
		data, err := d.Block.Read(ctx, sess.Org, c.BlockID, sess.Device)
		if err != nil {
			return errResponse(err)
		}
		return ok(data)

	case UserGetCmd:
		u, err := d.Identity.GetUser(ctx, sess.Org, c.UserID)
		if err != nil {
			return errResponse(err)
		}
		return ok(u)

	case UserFindCmd:
		users, err := d.Identity.FindUsers(ctx, sess.Org, c.Query)
		if err != nil {
			return errResponse(err)
		}
		return ok(users)

	case UserInviteCmd:
		inv, err := d.Identity.InviteUser(ctx, sess.Org, sess.Device.UserID(), c.ClaimerEmail, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(inv)

	case UserCancelInvitationCmd:
		if err := d.Identity.CancelUserInvitation(ctx, sess.Org, c.Token); err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case UserCreateCmd:
		now := d.now()
		if err := verifyUserCertificate(ctx, d.TrustChain, sess.Org, c.User, now); err != nil {
			return errResponse(err)
		}
		if c.FirstDevice != nil {
			if err := verifyDeviceCertificate(ctx, d.TrustChain, sess.Org, c.FirstDevice, now); err != nil {
				return errResponse(err)
			}
		}
		if err := d.Identity.CreateUser(ctx, sess.Org, c.InviteToken, c.User, c.FirstDevice, now); err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case UserRevokeCmd:
		if err := d.Identity.RevokeUser(ctx, sess.Org, c.UserID, sess.Device, d.now()); err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case DeviceInviteCmd:
		inv, err := d.Identity.InviteDevice(ctx, sess.Org, sess.Device.UserID(), d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(inv)

	case DeviceCancelInvitationCmd:
		if err := d.Identity.CancelDeviceInvitation(ctx, sess.Org, c.Token); err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case DeviceCreateCmd:
		now := d.now()
		if err := verifyDeviceCertificate(ctx, d.TrustChain, sess.Org, c.Device, now); err != nil {
			return errResponse(err)
		}
		if err := d.Identity.CreateDevice(ctx, sess.Org, c.InviteToken, c.Device, now); err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case OrganizationStatsCmd:
		stats, err := d.Identity.OrganizationStats(ctx, sess.Org)
		if err != nil {
			return errResponse(err)
		}
		return ok(stats)

	case OrganizationBootstrapCmd, UserGetInvitationCreatorCmd, UserClaimCmd,
		DeviceGetInvitationCreatorCmd, DeviceClaimCmd:
		// Anonymous-only commands reaching the authenticated dispatcher is
		// a transport bug: these never carry a Session.
		return errResponse(domain.ErrInvalidData)

	default:
		d.Log.Error("unhandled command kind reached authenticated dispatcher", zap.String("kind", string(cmd.Kind())))
		return errResponse(domain.ErrInvalidData)
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
