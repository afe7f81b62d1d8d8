package domain

import "time"

// Block is opaque, immutable-after-creation data; the body lives in a
// pluggable blockstore, this struct is the transactional metadata half.
type Block struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	BlockID        BlockID        `json:"block_id" gorm:"primaryKey"`
	RealmID        RealmID        `json:"realm_id"`
	Author         DeviceID       `json:"author"`
	Size           int            `json:"size"`
	CreatedOn      time.Time      `json:"created_on"`
}
