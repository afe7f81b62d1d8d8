package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// AnonymousDispatcher routes the six commands spec.md §6 allows before a
// device has completed its handshake: ping, organization_bootstrap, the
// two invitation-creator lookups, and the two claim commands. It is kept
// separate from Dispatcher because none of these carry a Session.
type AnonymousDispatcher struct {
	Bootstrap  ports.BootstrapService
	Identity   ports.IdentityService
	TrustChain ports.TrustChainVerifier
	Org        domain.OrganizationID
	Now        func() time.Time
	Log        *zap.Logger
}

func (d *AnonymousDispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *AnonymousDispatcher) Dispatch(ctx context.Context, cmd Command) Response {
	switch c := cmd.(type) {
	case AnonymousPingCmd:
		return ok(c.Ping)

	case OrganizationBootstrapCmd:
		err := d.Bootstrap.Bootstrap(ctx, d.Org, c.Token, c.RootUser, c.RootDevice, d.now())
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case UserGetInvitationCreatorCmd:
		// No invitation lookup is made here: every token is answered
		// with not_found, and no greeter user/device record is returned.
		return errResponse(domain.ErrNotFound)

	case UserClaimCmd:
		now := d.now()
		if err := verifyUserCertificate(ctx, d.TrustChain, d.Org, c.User, now); err != nil {
			return errResponse(err)
		}
		if c.FirstDevice != nil {
			if err := verifyDeviceCertificate(ctx, d.TrustChain, d.Org, c.FirstDevice, now); err != nil {
				return errResponse(err)
			}
		}
		err := d.Identity.CreateUser(ctx, d.Org, c.Token, c.User, c.FirstDevice, now)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case DeviceGetInvitationCreatorCmd:
		return errResponse(domain.ErrNotFound)

	case DeviceClaimCmd:
		now := d.now()
		if err := verifyDeviceCertificate(ctx, d.TrustChain, d.Org, c.Device, now); err != nil {
			return errResponse(err)
		}
		err := d.Identity.CreateDevice(ctx, d.Org, c.Token, c.Device, now)
		if err != nil {
			return errResponse(err)
		}
		return ok(nil)

	case PingCmd, EventsSubscribeCmd, EventsListenCmd, MessageSendCmd, MessageGetCmd,
		VlobCreateCmd, VlobReadCmd, VlobUpdateCmd, VlobPollChangesCmd, VlobListVersionsCmd,
		VlobMaintenanceGetBatchCmd, VlobMaintenanceSaveBatchCmd,
		RealmCreateCmd, RealmStatusCmd, RealmGetRoleCertificatesCmd, RealmUpdateRolesCmd,
		RealmStartMaintenanceCmd, RealmFinishMaintenanceCmd,
		BlockCreateCmd, BlockReadCmd,
		UserGetCmd, UserFindCmd, UserInviteCmd, UserCancelInvitationCmd, UserCreateCmd, UserRevokeCmd,
		DeviceInviteCmd, DeviceCancelInvitationCmd, DeviceCreateCmd, OrganizationStatsCmd:
		// Authenticated-only commands reaching the anonymous dispatcher is
		// a transport bug: the handshake gates these behind a Session.
		return errResponse(domain.ErrInvalidData)

	default:
		d.Log.Error("unhandled command kind reached anonymous dispatcher", zap.String("kind", string(cmd.Kind())))
		return errResponse(domain.ErrInvalidData)
	}
}
