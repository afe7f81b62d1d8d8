package domain

import "errors"

// These sentinels are the closed taxonomy mapped 1:1 onto the wire "status" field
// of spec.md §6/§7. Every engine operation fails with one of these
// sentinels (or nil); the dispatcher is the only place that translates
// them to wire responses.
var (
	ErrNotAllowed             = errors.New("not_allowed")
	ErrNotFound               = errors.New("not_found")
	ErrAlreadyExists          = errors.New("already_exists")
	ErrAlreadyGranted         = errors.New("already_granted")
	ErrBadVersion             = errors.New("bad_version")
	ErrBadTimestamp           = errors.New("bad_timestamp")
	ErrBadEncryptionRevision  = errors.New("bad_encryption_revision")
	ErrInMaintenance          = errors.New("in_maintenance")
	ErrMaintenanceError       = errors.New("maintenance_error")
	ErrRequireGreaterTimestamp = errors.New("require_greater_timestamp")
	ErrInvalidCertification   = errors.New("invalid_certification")
	ErrInvalidData            = errors.New("invalid_data")
	ErrNoEvents               = errors.New("no_events")
	ErrBadMessage             = errors.New("bad_message")
)
