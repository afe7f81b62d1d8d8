package domain

import "time"

// User is identified by a user_id unique within its organization.
type User struct {
	OrganizationID  OrganizationID `json:"organization_id" gorm:"primaryKey"`
	UserID          UserID         `json:"user_id" gorm:"primaryKey"`
	IsAdmin         bool           `json:"is_admin"`
	CreatedOn       time.Time      `json:"created_on"`
	RevokedOn       *time.Time     `json:"revoked_on,omitempty"`
	UserCertifier   *DeviceID      `json:"user_certifier,omitempty"` // nil = signed by root
	UserCertificate []byte         `json:"-"`                        // signed envelope, opaque bytes
	PublicKey       []byte         `json:"-"`                        // nacl/box public key, opaque to the backend
}

// Device is identified by device_id = user_id@device_name.
type Device struct {
	OrganizationID           OrganizationID `json:"organization_id" gorm:"primaryKey"`
	DeviceID                 DeviceID       `json:"device_id" gorm:"primaryKey"`
	CreatedOn                time.Time      `json:"created_on"`
	RevokedOn                *time.Time     `json:"revoked_on,omitempty"`
	DeviceCertifier          *DeviceID      `json:"device_certifier,omitempty"`
	DeviceCertificate        []byte         `json:"-"`
	RevocationCertifier      *DeviceID      `json:"revocation_certifier,omitempty"`
	RevokedDeviceCertificate []byte         `json:"-"`
	VerifyKey                []byte         `json:"-" gorm:"type:bytea"` // nacl/sign public key, 32 bytes
}

func (u *User) Revoked(at time.Time) bool {
	return u.RevokedOn != nil && !u.RevokedOn.After(at)
}

func (d *Device) Revoked(at time.Time) bool {
	return d.RevokedOn != nil && !d.RevokedOn.After(at)
}
