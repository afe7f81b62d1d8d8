package domain

import "time"

// Role is a realm membership level. Order matters: higher roles are a
// strict superset of the privileges of lower ones.
type Role string

const (
	RoleOwner       Role = "OWNER"
	RoleManager     Role = "MANAGER"
	RoleContributor Role = "CONTRIBUTOR"
	RoleReader      Role = "READER"
)

// CanWriteVlobsAndBlocks reports whether the role may create/update vlobs
// and create blocks (spec.md §4.3/§4.4: CONTRIBUTOR, MANAGER or OWNER).
func (r Role) CanWriteVlobsAndBlocks() bool {
	return r == RoleOwner || r == RoleManager || r == RoleContributor
}

// CanManageRoles reports whether the role may change other users' roles
// (OWNER or MANAGER may change non-owner roles; only OWNER may touch OWNER).
func (r Role) CanManageRoles() bool {
	return r == RoleOwner || r == RoleManager
}

// MaintenanceType names the kind of exclusive maintenance window a realm can
// be placed into. REENCRYPTION migrates vlob atoms to a new encryption
// revision (spec.md §4.3); GARBAGE_COLLECTION supplements the distilled
// spec with the original backend's storage-compaction maintenance kind,
// which spec.md's Non-goals never exclude.
type MaintenanceType string

const (
	MaintenanceReencryption     MaintenanceType = "REENCRYPTION"
	MaintenanceGarbageCollection MaintenanceType = "GARBAGE_COLLECTION"
)

// RealmStatus is IDLE or IN_MAINTENANCE(type, started_on, started_by).
type RealmStatus struct {
	InMaintenance bool
	Type          MaintenanceType
	StartedOn     time.Time
	StartedBy     DeviceID
}

// RoleCertificate is one append-only entry in a realm's role-change log.
// Current role for a user is the latest non-superseded entry; see
// spec.md §9 "Role history vs current role".
type RoleCertificate struct {
	RealmID    RealmID   `json:"realm_id" gorm:"primaryKey"`
	Seq        int       `json:"seq" gorm:"primaryKey"` // monotonic per realm, insertion order
	UserID     UserID    `json:"user_id"`
	Role       *Role     `json:"role,omitempty"` // nil = access revoked
	GrantedBy  DeviceID  `json:"granted_by"`
	GrantedOn  time.Time `json:"granted_on"`
	Certificate []byte   `json:"-"` // signed envelope proving GrantedBy authorized this change
}

// Realm is the access-controlled container owning a set of vlobs and blocks.
type Realm struct {
	OrganizationID     OrganizationID `json:"organization_id" gorm:"primaryKey"`
	RealmID            RealmID        `json:"realm_id" gorm:"primaryKey"`
	EncryptionRevision int            `json:"encryption_revision"` // monotonic, >= 1
	Checkpoint         int            `json:"checkpoint"`          // monotonic, >= 0
	CreatedOn          time.Time      `json:"created_on"`
	Status             RealmStatus    `json:"status" gorm:"embedded;embeddedPrefix:status_"`
}

// RealmVlobUpdate is one entry in a realm's per-realm change log: spec.md
// §4.3 "Per-realm change log" — records checkpoint, vlob_id and version for
// poll_changes.
type RealmVlobUpdate struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	RealmID        RealmID        `json:"realm_id" gorm:"primaryKey"`
	Checkpoint     int            `json:"checkpoint" gorm:"primaryKey"`
	VlobID         VlobID         `json:"vlob_id"`
	Version        int            `json:"version"`
}
