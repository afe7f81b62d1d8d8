package domain

import "time"

// VlobAtom is a single versioned revision of a vlob. Versions for a given
// vlob are exactly 1..N, contiguous, no gaps (spec.md invariant #1).
type VlobAtom struct {
	OrganizationID     OrganizationID `json:"organization_id" gorm:"primaryKey"`
	VlobID             VlobID         `json:"vlob_id" gorm:"primaryKey"`
	Version            int            `json:"version" gorm:"primaryKey"`
	Blob               []byte         `json:"blob"`
	Author             DeviceID       `json:"author"`
	Timestamp          time.Time      `json:"timestamp"`
	EncryptionRevision int            `json:"encryption_revision"`
}

// Vlob carries the identity and realm binding shared by all of a vlob's
// atoms. The realm binding is immutable once created.
type Vlob struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	VlobID         VlobID         `json:"vlob_id" gorm:"primaryKey"`
	RealmID        RealmID        `json:"realm_id"`
	CreatedOn      time.Time      `json:"created_on"`
}
