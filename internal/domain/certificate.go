package domain

import "time"

// CertificateKind tags the structured record carried inside a certificate
// envelope once its signature has been stripped.
type CertificateKind string

const (
	CertifiedDevice           CertificateKind = "device"
	CertifiedUser             CertificateKind = "user"
	CertifiedDeviceRevocation CertificateKind = "device_revocation"
)

// Envelope wraps every certificate: (certifier_id, signed_blob). A nil
// CertifierID means the sentinel "root" signer.
type Envelope struct {
	CertifierID *DeviceID
	Signed      []byte // signature || inner payload, nacl/sign wire format
}

// DevicePayload is the inner record of a CertifiedDevice certificate.
type DevicePayload struct {
	Kind      CertificateKind
	Timestamp time.Time
	DeviceID  DeviceID
	VerifyKey []byte
}

// UserPayload is the inner record of a CertifiedUser certificate.
type UserPayload struct {
	Kind      CertificateKind
	Timestamp time.Time
	UserID    UserID
	PublicKey []byte
}

// DeviceRevocationPayload is the inner record of a CertifiedDeviceRevocation
// certificate.
type DeviceRevocationPayload struct {
	Kind      CertificateKind
	Timestamp time.Time
	DeviceID  DeviceID
}
