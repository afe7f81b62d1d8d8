package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OrganizationID identifies a tenant. Organizations never reference each
// other; every other ID below is only meaningful within one OrganizationID.
type OrganizationID string

// UserID is unique within an organization.
type UserID string

// DeviceID is "user_id@device_name".
type DeviceID string

func NewDeviceID(user UserID, deviceName string) DeviceID {
	return DeviceID(fmt.Sprintf("%s@%s", user, deviceName))
}

// UserID extracts the owning user from a device ID.
func (d DeviceID) UserID() UserID {
	user, _, _ := strings.Cut(string(d), "@")
	return UserID(user)
}

func (d DeviceID) DeviceName() string {
	_, name, _ := strings.Cut(string(d), "@")
	return name
}

// NewInvitationToken mints the opaque token a user_invite/device_invite
// response carries; the claimer presents it back verbatim to user_claim
// or device_claim.
func NewInvitationToken() string { return uuid.New().String() }

// RealmID is a UUID-backed access-control container identifier.
type RealmID uuid.UUID

func NewRealmID() RealmID { return RealmID(uuid.New()) }

func (r RealmID) String() string { return uuid.UUID(r).String() }

// VlobID identifies a versioned ciphertext object.
type VlobID uuid.UUID

func NewVlobID() VlobID { return VlobID(uuid.New()) }

func (v VlobID) String() string { return uuid.UUID(v).String() }

// BlockID identifies an immutable opaque blob.
type BlockID uuid.UUID

func NewBlockID() BlockID { return BlockID(uuid.New()) }

func (b BlockID) String() string { return uuid.UUID(b).String() }

// Value/Scan implementations let gorm persist these as native uuid/text
// columns instead of opaque byte blobs.

func (r RealmID) Value() (driver.Value, error) { return uuid.UUID(r).String(), nil }

func (r *RealmID) Scan(src any) error {
	id, err := scanUUID(src)
	if err != nil {
		return err
	}
	*r = RealmID(id)
	return nil
}

func (v VlobID) Value() (driver.Value, error) { return uuid.UUID(v).String(), nil }

func (v *VlobID) Scan(src any) error {
	id, err := scanUUID(src)
	if err != nil {
		return err
	}
	*v = VlobID(id)
	return nil
}

func (b BlockID) Value() (driver.Value, error) { return uuid.UUID(b).String(), nil }

func (b *BlockID) Scan(src any) error {
	id, err := scanUUID(src)
	if err != nil {
		return err
	}
	*b = BlockID(id)
	return nil
}

// MarshalJSON/UnmarshalJSON render these UUID-backed IDs as their
// canonical string form on the wire instead of a raw 16-byte array, the
// same representation String() already gives callers within the process.

func (r RealmID) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *RealmID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("realm id: %w", err)
	}
	*r = RealmID(id)
	return nil
}

func (v VlobID) MarshalJSON() ([]byte, error) { return json.Marshal(v.String()) }

func (v *VlobID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("vlob id: %w", err)
	}
	*v = VlobID(id)
	return nil
}

func (b BlockID) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

func (b *BlockID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("block id: %w", err)
	}
	*b = BlockID(id)
	return nil
}

func scanUUID(src any) (uuid.UUID, error) {
	switch v := src.(type) {
	case string:
		return uuid.Parse(v)
	case []byte:
		return uuid.Parse(string(v))
	default:
		return uuid.UUID{}, fmt.Errorf("unsupported uuid scan source %T", src)
	}
}
