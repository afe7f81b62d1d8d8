// Package handlers decodes wire envelopes into session.Command values and
// dispatches them, grounded on the teacher's own fiber handler shape
// (internal/adapter/http/fiber/handlers) and websocket hub
// (internal/adapter/websocket/hub.go).
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/service/session"
)

func newReader(data []byte) *bytes.Reader { return bytes.NewReader(data) }

// envelope is the self-describing wire record of spec.md §6: "Requests
// and responses are self-describing records identified by a cmd field."
type envelope struct {
	Cmd  string          `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

type responseEnvelope struct {
	Status session.Status `json:"status"`
	Data   any            `json:"data,omitempty"`
}

func toResponseEnvelope(r session.Response) responseEnvelope {
	return responseEnvelope{Status: r.Status, Data: r.Data}
}

// wireFilter mirrors session.Filter with realm sets expressed as arrays
// rather than maps, since a JSON object can't key on a RealmID directly.
type wireFilter struct {
	Pinged            bool             `json:"pinged"`
	MessageReceived   bool             `json:"message_received"`
	RealmVlobsUpdated []domain.RealmID `json:"realm_vlobs_updated"`
	RealmRolesUpdated []domain.RealmID `json:"realm_roles_updated"`
	RealmMaintenance  []domain.RealmID `json:"realm_maintenance"`
}

func toSet(ids []domain.RealmID) map[domain.RealmID]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[domain.RealmID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (f wireFilter) toDomain() session.Filter {
	return session.Filter{
		Pinged:            f.Pinged,
		MessageReceived:   f.MessageReceived,
		RealmVlobsUpdated: toSet(f.RealmVlobsUpdated),
		RealmRolesUpdated: toSet(f.RealmRolesUpdated),
		RealmMaintenance:  toSet(f.RealmMaintenance),
	}
}

// wireUser/wireDevice decode the fields domain.User/domain.Device hide
// from JSON (UserCertificate, PublicKey, DeviceCertificate, VerifyKey are
// tagged json:"-" so they never leak back out on a response) but which a
// user_create/device_create/user_claim/device_claim request must still
// carry inbound.
type wireUser struct {
	UserID          domain.UserID    `json:"user_id"`
	IsAdmin         bool             `json:"is_admin"`
	CreatedOn       time.Time        `json:"created_on"`
	UserCertifier   *domain.DeviceID `json:"user_certifier,omitempty"`
	UserCertificate []byte           `json:"user_certificate"`
	PublicKey       []byte           `json:"public_key"`
}

func (w wireUser) toDomain(org domain.OrganizationID) *domain.User {
	return &domain.User{
		OrganizationID:  org,
		UserID:          w.UserID,
		IsAdmin:         w.IsAdmin,
		CreatedOn:       w.CreatedOn,
		UserCertifier:   w.UserCertifier,
		UserCertificate: w.UserCertificate,
		PublicKey:       w.PublicKey,
	}
}

type wireDevice struct {
	DeviceID          domain.DeviceID  `json:"device_id"`
	CreatedOn         time.Time        `json:"created_on"`
	DeviceCertifier   *domain.DeviceID `json:"device_certifier,omitempty"`
	DeviceCertificate []byte           `json:"device_certificate"`
	VerifyKey         []byte           `json:"verify_key"`
}

func (w wireDevice) toDomain(org domain.OrganizationID) *domain.Device {
	return &domain.Device{
		OrganizationID:    org,
		DeviceID:          w.DeviceID,
		CreatedOn:         w.CreatedOn,
		DeviceCertifier:   w.DeviceCertifier,
		DeviceCertificate: w.DeviceCertificate,
		VerifyKey:         w.VerifyKey,
	}
}

// decodeAuthenticated turns one envelope into the matching session.Command
// for the authenticated dispatcher. Unknown fields in Data are rejected
// (spec.md §6: "strict validation; unknown fields rejected").
func decodeAuthenticated(org domain.OrganizationID, env envelope) (session.Command, error) {
	dec := func(v any) error {
		if len(env.Data) == 0 {
			return nil
		}
		d := json.NewDecoder(newReader(env.Data))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}

	switch session.CommandKind(env.Cmd) {
	case session.CmdPing:
		var w struct {
			Ping string `json:"ping"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.PingCmd{Ping: w.Ping}, nil

	case session.CmdEventsSubscribe:
		var w struct {
			Filter wireFilter `json:"filter"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.EventsSubscribeCmd{Filter: w.Filter.toDomain()}, nil

	case session.CmdEventsListen:
		var w struct {
			Wait bool `json:"wait"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.EventsListenCmd{Wait: w.Wait}, nil

	case session.CmdMessageSend:
		var w struct {
			Recipient domain.UserID `json:"recipient"`
			Body      []byte        `json:"body"`
			Timestamp time.Time     `json:"timestamp"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.MessageSendCmd{Recipient: w.Recipient, Body: w.Body, Timestamp: w.Timestamp}, nil

	case session.CmdMessageGet:
		var w struct {
			Offset int `json:"offset"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.MessageGetCmd{Offset: w.Offset}, nil

	case session.CmdVlobCreate:
		var w struct {
			RealmID            domain.RealmID `json:"realm_id"`
			VlobID             domain.VlobID  `json:"vlob_id"`
			Blob               []byte         `json:"blob"`
			Timestamp          time.Time      `json:"timestamp"`
			EncryptionRevision int            `json:"encryption_revision"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobCreateCmd{RealmID: w.RealmID, VlobID: w.VlobID, Blob: w.Blob, Timestamp: w.Timestamp, EncryptionRevision: w.EncryptionRevision}, nil

	case session.CmdVlobRead:
		var w struct {
			VlobID  domain.VlobID `json:"vlob_id"`
			Version *int          `json:"version,omitempty"`
			At      *time.Time    `json:"at,omitempty"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobReadCmd{VlobID: w.VlobID, Version: w.Version, At: w.At}, nil

	case session.CmdVlobUpdate:
		var w struct {
			VlobID             domain.VlobID `json:"vlob_id"`
			Version            int           `json:"version"`
			Blob               []byte        `json:"blob"`
			Timestamp          time.Time     `json:"timestamp"`
			EncryptionRevision int           `json:"encryption_revision"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobUpdateCmd{VlobID: w.VlobID, Version: w.Version, Blob: w.Blob, Timestamp: w.Timestamp, EncryptionRevision: w.EncryptionRevision}, nil

	case session.CmdVlobPollChanges:
		var w struct {
			RealmID        domain.RealmID `json:"realm_id"`
			LastCheckpoint int            `json:"last_checkpoint"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobPollChangesCmd{RealmID: w.RealmID, LastCheckpoint: w.LastCheckpoint}, nil

	case session.CmdVlobListVersions:
		var w struct {
			VlobID domain.VlobID `json:"vlob_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobListVersionsCmd{VlobID: w.VlobID}, nil

	case session.CmdVlobMaintenanceGetBatch:
		var w struct {
			RealmID            domain.RealmID `json:"realm_id"`
			EncryptionRevision int            `json:"encryption_revision"`
			Size               int            `json:"size"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobMaintenanceGetBatchCmd{RealmID: w.RealmID, EncryptionRevision: w.EncryptionRevision, Size: w.Size}, nil

	case session.CmdVlobMaintenanceSaveBatch:
		var w struct {
			RealmID            domain.RealmID      `json:"realm_id"`
			EncryptionRevision int                  `json:"encryption_revision"`
			Atoms              []*domain.VlobAtom   `json:"atoms"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.VlobMaintenanceSaveBatchCmd{RealmID: w.RealmID, EncryptionRevision: w.EncryptionRevision, Atoms: w.Atoms}, nil

	case session.CmdRealmCreate:
		var w struct {
			RealmID domain.RealmID `json:"realm_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmCreateCmd{RealmID: w.RealmID}, nil

	case session.CmdRealmStatus:
		var w struct {
			RealmID domain.RealmID `json:"realm_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmStatusCmd{RealmID: w.RealmID}, nil

	case session.CmdRealmGetRoleCertificates:
		var w struct {
			RealmID domain.RealmID `json:"realm_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmGetRoleCertificatesCmd{RealmID: w.RealmID}, nil

	case session.CmdRealmUpdateRoles:
		var w struct {
			RealmID     domain.RealmID `json:"realm_id"`
			Target      domain.UserID  `json:"target"`
			Role        *domain.Role   `json:"role,omitempty"`
			Certificate []byte         `json:"certificate"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmUpdateRolesCmd{RealmID: w.RealmID, Target: w.Target, Role: w.Role, Certificate: w.Certificate}, nil

	case session.CmdRealmStartMaintenance:
		var w struct {
			RealmID            domain.RealmID `json:"realm_id"`
			EncryptionRevision int            `json:"encryption_revision"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmStartMaintenanceCmd{RealmID: w.RealmID, EncryptionRevision: w.EncryptionRevision}, nil

	case session.CmdRealmFinishMaintenance:
		var w struct {
			RealmID domain.RealmID `json:"realm_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.RealmFinishMaintenanceCmd{RealmID: w.RealmID}, nil

	case session.CmdBlockCreate:
		var w struct {
			BlockID domain.BlockID `json:"block_id"`
			RealmID domain.RealmID `json:"realm_id"`
			Data    []byte         `json:"data"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.BlockCreateCmd{BlockID: w.BlockID, RealmID: w.RealmID, Data: w.Data}, nil

	case session.CmdBlockRead:
		var w struct {
			BlockID domain.BlockID `json:"block_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.BlockReadCmd{BlockID: w.BlockID}, nil

	case session.CmdUserGet:
		var w struct {
			UserID domain.UserID `json:"user_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserGetCmd{UserID: w.UserID}, nil

	case session.CmdUserFind:
		var w struct {
			Query string `json:"query"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserFindCmd{Query: w.Query}, nil

	case session.CmdUserInvite:
		var w struct {
			ClaimerEmail string `json:"claimer_email"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserInviteCmd{ClaimerEmail: w.ClaimerEmail}, nil

	case session.CmdUserCancelInvitation:
		var w struct {
			Token string `json:"token"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserCancelInvitationCmd{Token: w.Token}, nil

	case session.CmdUserCreate:
		var w struct {
			InviteToken string     `json:"invite_token"`
			User        wireUser   `json:"user"`
			FirstDevice wireDevice `json:"first_device"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserCreateCmd{InviteToken: w.InviteToken, User: w.User.toDomain(org), FirstDevice: w.FirstDevice.toDomain(org)}, nil

	case session.CmdUserRevoke:
		var w struct {
			UserID domain.UserID `json:"user_id"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserRevokeCmd{UserID: w.UserID}, nil

	case session.CmdDeviceInvite:
		return session.DeviceInviteCmd{}, nil

	case session.CmdDeviceCancelInvitation:
		var w struct {
			Token string `json:"token"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.DeviceCancelInvitationCmd{Token: w.Token}, nil

	case session.CmdDeviceCreate:
		var w struct {
			InviteToken string     `json:"invite_token"`
			Device      wireDevice `json:"device"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.DeviceCreateCmd{InviteToken: w.InviteToken, Device: w.Device.toDomain(org)}, nil

	case session.CmdOrganizationStats:
		return session.OrganizationStatsCmd{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown command %q", domain.ErrBadMessage, env.Cmd)
	}
}

// decodeAnonymous turns one envelope into the matching session.Command for
// the anonymous dispatcher.
func decodeAnonymous(org domain.OrganizationID, env envelope) (session.Command, error) {
	dec := func(v any) error {
		if len(env.Data) == 0 {
			return nil
		}
		d := json.NewDecoder(newReader(env.Data))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}

	switch session.CommandKind(env.Cmd) {
	case session.CmdPing:
		var w struct {
			Ping string `json:"ping"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.AnonymousPingCmd{Ping: w.Ping}, nil

	case session.CmdOrganizationBootstrap:
		var w struct {
			Token      string     `json:"token"`
			RootUser   wireUser   `json:"root_user"`
			RootDevice wireDevice `json:"root_device"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.OrganizationBootstrapCmd{Token: w.Token, RootUser: w.RootUser.toDomain(org), RootDevice: w.RootDevice.toDomain(org)}, nil

	case session.CmdUserGetInvitationCreator:
		var w struct {
			Token string `json:"token"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserGetInvitationCreatorCmd{Token: w.Token}, nil

	case session.CmdUserClaim:
		var w struct {
			Token       string     `json:"token"`
			User        wireUser   `json:"user"`
			FirstDevice wireDevice `json:"first_device"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.UserClaimCmd{Token: w.Token, User: w.User.toDomain(org), FirstDevice: w.FirstDevice.toDomain(org)}, nil

	case session.CmdDeviceGetInvitationCreator:
		var w struct {
			Token string `json:"token"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.DeviceGetInvitationCreatorCmd{Token: w.Token}, nil

	case session.CmdDeviceClaim:
		var w struct {
			Token  string     `json:"token"`
			Device wireDevice `json:"device"`
		}
		if err := dec(&w); err != nil {
			return nil, badMessage(err)
		}
		return session.DeviceClaimCmd{Token: w.Token, Device: w.Device.toDomain(org)}, nil

	default:
		return nil, fmt.Errorf("%w: command %q not allowed before handshake", domain.ErrBadMessage, env.Cmd)
	}
}

func badMessage(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrBadMessage, err)
}
