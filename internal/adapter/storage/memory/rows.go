package memory

import (
	"strconv"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// Every table stores a small wrapper carrying the composite string keys
// go-memdb's single-field indexers need, plus a pointer to the actual
// domain row. Wrappers are never mutated in place: every write replaces
// the wrapper, keeping snapshots returned by memdb's copy-on-write radix
// tree safe to hand back to callers without further copying.

func orgKey(org domain.OrganizationID) string { return string(org) }

func scopedKey(org domain.OrganizationID, id string) string {
	return string(org) + "|" + id
}

func realmScopedKey(org domain.OrganizationID, realm domain.RealmID, rest string) string {
	return string(org) + "|" + realm.String() + "|" + rest
}

type organizationRow struct {
	Key  string
	Data *domain.Organization
}

type bootstrapTokenRow struct {
	Key  string
	Data *domain.BootstrapToken
}

type userRow struct {
	Key  string
	Org  string
	Data *domain.User
}

type userInvitationRow struct {
	Key  string
	Data *domain.UserInvitation
}

type deviceRow struct {
	Key  string
	Org  string
	Data *domain.Device
}

type deviceInvitationRow struct {
	Key  string
	Data *domain.DeviceInvitation
}

type realmRow struct {
	Key  string
	Org  string
	Data *domain.Realm
}

type realmRoleRow struct {
	Key      string
	RealmKey string
	Data     *domain.RoleCertificate
}

type realmVlobUpdateRow struct {
	Key      string
	RealmKey string
	Data     *domain.RealmVlobUpdate
}

type vlobRow struct {
	Key  string
	Org  string
	Data *domain.Vlob
}

type vlobAtomRow struct {
	Key     string
	VlobKey string
	Data    *domain.VlobAtom
}

type blockRow struct {
	Key  string
	Data *domain.Block
}

type messageRow struct {
	Key          string
	RecipientKey string
	Data         *domain.Message
}

func userInvitationKey(org domain.OrganizationID, token string) string { return scopedKey(org, token) }
func deviceInvitationKey(org domain.OrganizationID, token string) string {
	return scopedKey(org, token)
}

func vlobAtomKey(org domain.OrganizationID, id domain.VlobID, version int) string {
	return string(org) + "|" + id.String() + "|" + strconv.Itoa(version)
}

func changeLogKey(org domain.OrganizationID, realm domain.RealmID, checkpoint int) string {
	return realmScopedKey(org, realm, strconv.Itoa(checkpoint))
}

func messageKey(org domain.OrganizationID, recipient domain.UserID, index int) string {
	return string(org) + "|" + string(recipient) + "|" + strconv.Itoa(index)
}

func recipientKey(org domain.OrganizationID, recipient domain.UserID) string {
	return string(org) + "|" + string(recipient)
}
