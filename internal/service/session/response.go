package session

import (
	"errors"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// Status is the wire-visible outcome of spec.md §6: "Response always
// carries a status field."
type Status string

const (
	StatusOK                       Status = "ok"
	StatusNotAllowed                Status = "not_allowed"
	StatusNotFound                  Status = "not_found"
	StatusAlreadyExists             Status = "already_exists"
	StatusBadVersion                Status = "bad_version"
	StatusBadTimestamp              Status = "bad_timestamp"
	StatusBadEncryptionRevision     Status = "bad_encryption_revision"
	StatusInMaintenance             Status = "in_maintenance"
	StatusMaintenanceError          Status = "maintenance_error"
	StatusRequireGreaterTimestamp   Status = "require_greater_timestamp"
	StatusInvalidCertification      Status = "invalid_certification"
	StatusInvalidData               Status = "invalid_data"
	StatusNoEvents                  Status = "no_events"
	StatusBadMessage                Status = "bad_message"
)

// Response is what every Dispatch call returns. Data carries the
// command-specific payload on StatusOK; its shape depends on the
// command's Kind.
type Response struct {
	Status Status
	Data   any
}

func ok(data any) Response { return Response{Status: StatusOK, Data: data} }

// errStatus maps the closed domain error taxonomy onto the wire status
// codes of spec.md §6. An error that isn't one of these sentinels maps
// to bad_message.
func errStatus(err error) Status {
	switch {
	case errors.Is(err, domain.ErrNotAllowed):
		return StatusNotAllowed
	case errors.Is(err, domain.ErrNotFound):
		return StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrAlreadyGranted):
		return StatusAlreadyExists
	case errors.Is(err, domain.ErrBadVersion):
		return StatusBadVersion
	case errors.Is(err, domain.ErrBadTimestamp):
		return StatusBadTimestamp
	case errors.Is(err, domain.ErrBadEncryptionRevision):
		return StatusBadEncryptionRevision
	case errors.Is(err, domain.ErrInMaintenance):
		return StatusInMaintenance
	case errors.Is(err, domain.ErrMaintenanceError):
		return StatusMaintenanceError
	case errors.Is(err, domain.ErrRequireGreaterTimestamp):
		return StatusRequireGreaterTimestamp
	case errors.Is(err, domain.ErrInvalidCertification):
		return StatusInvalidCertification
	case errors.Is(err, domain.ErrInvalidData):
		return StatusInvalidData
	case errors.Is(err, domain.ErrNoEvents):
		return StatusNoEvents
	default:
		return StatusBadMessage
	}
}

func errResponse(err error) Response { return Response{Status: errStatus(err)} }
