package domain

import "time"

// UserInvitation is created by an admin to let a yet-unknown user claim a
// UserID. Cancelled invitations are kept (monotone state, never deleted).
type UserInvitation struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	Token          string         `json:"token" gorm:"primaryKey"`
	ClaimerEmail   string         `json:"claimer_email"`
	GreeterUserID  UserID         `json:"greeter_user_id"`
	CreatedOn      time.Time      `json:"created_on"`
	CancelledOn    *time.Time     `json:"cancelled_on,omitempty"`
	ClaimedOn      *time.Time     `json:"claimed_on,omitempty"`
}

// DeviceInvitation lets an existing user enroll a new device of theirs.
type DeviceInvitation struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	Token          string         `json:"token" gorm:"primaryKey"`
	GreeterUserID  UserID         `json:"greeter_user_id"`
	CreatedOn      time.Time      `json:"created_on"`
	CancelledOn    *time.Time     `json:"cancelled_on,omitempty"`
	ClaimedOn      *time.Time     `json:"claimed_on,omitempty"`
}

func (i *UserInvitation) Active(at time.Time) bool {
	return i.CancelledOn == nil && i.ClaimedOn == nil
}

func (i *DeviceInvitation) Active(at time.Time) bool {
	return i.CancelledOn == nil && i.ClaimedOn == nil
}
