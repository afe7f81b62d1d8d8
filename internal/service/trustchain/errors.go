package trustchain

import "errors"

// These mirror the narrow exception hierarchy of the original trust-chain
// validator. ErrTooOld, ErrSignedByRevokedDevice and ErrBrokenChain are
// returned wrapped around domain.ErrInvalidCertification, so callers can
// errors.Is against either the coarse domain sentinel or the precise cause
// here. A failed signature check in the ValidatePayload* functions carries
// only ErrBadSignature's text under domain.ErrInvalidCertification;
// OpenWithVerifyKey returns ErrBadSignature itself. No function in this
// package returns ErrCertifServerMismatch.
var (
	ErrTooOld                = errors.New("trustchain: timestamp not in ballpark")
	ErrCertifServerMismatch  = errors.New("trustchain: certifier id disagrees between payload and server record")
	ErrSignedByRevokedDevice = errors.New("trustchain: certificate signed after its signer was revoked")
	ErrBrokenChain           = errors.New("trustchain: signer unknown or chain cycle detected")
	ErrBadSignature          = errors.New("trustchain: signature verification failed")
)
