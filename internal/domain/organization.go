package domain

import "time"

// Organization is the top-level tenant. All other entities are scoped by
// organization; no cross-organization reference is ever valid.
type Organization struct {
	ID            OrganizationID `json:"id" gorm:"primaryKey"`
	RootVerifyKey []byte         `json:"-" gorm:"type:bytea"` // nacl/sign public key, 32 bytes
	BootstrapDone bool           `json:"bootstrap_done"`
	CreatedOn     time.Time      `json:"created_on"`
}

// BootstrapToken is the anonymous, one-time token that roots an
// organization's trust chain when its first user+device pair registers.
type BootstrapToken struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	Token          string         `json:"-" gorm:"uniqueIndex"`
	ExpiresOn      time.Time      `json:"expires_on"`
	ConsumedOn     *time.Time     `json:"consumed_on,omitempty"`
}
