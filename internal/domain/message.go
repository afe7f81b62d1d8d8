package domain

import "time"

// Message is one append-only per-recipient mailbox entry. Index is a
// 1-based counter scoped to (organization, recipient).
type Message struct {
	OrganizationID OrganizationID `json:"organization_id" gorm:"primaryKey"`
	Recipient      UserID         `json:"recipient" gorm:"primaryKey"`
	Index          int            `json:"index" gorm:"primaryKey"`
	Sender         DeviceID       `json:"sender"`
	Timestamp      time.Time      `json:"timestamp"`
	Body           []byte         `json:"body"`
}
