package trustchain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// MaxTSBallpark is the default tolerance between a certified payload's
// embedded timestamp and the time the backend received it.
const MaxTSBallpark = 30 * time.Minute

func timestampsInTheBallpark(ts1, ts2 time.Time, ballpark time.Duration) bool {
	d := ts1.Sub(ts2)
	if d < 0 {
		d = -d
	}
	return d < ballpark
}

type deviceWire struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	VerifyKey []byte    `json:"verify_key"`
}

type userWire struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	PublicKey []byte    `json:"public_key"`
}

type deviceRevocationWire struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
}

// CertifyDevice signs a new device certificate. certifierKey is the
// signer's own key: a certifying device's key, or the organization's root
// signing key (whose envelope then carries a nil CertifierID).
func CertifyDevice(certifierKey SigningKey, deviceID domain.DeviceID, verifyKey []byte, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(deviceWire{
		Type:      string(domain.CertifiedDevice),
		Timestamp: now,
		DeviceID:  string(deviceID),
		VerifyKey: verifyKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	return signAndAddMeta(certifierKey, payload), nil
}

// ValidatePayloadCertifiedDevice verifies a device certificate's signature
// and ballpark timestamp, grounded on validate_payload_certified_device.
func ValidatePayloadCertifiedDevice(certifierKey []byte, certified []byte, createdOn time.Time, ballpark time.Duration) (*domain.DevicePayload, error) {
	raw, err := verifySignatureFrom(certifierKey, certified)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCertification, err)
	}
	var w deviceWire
	if err := json.Unmarshal(raw, &w); err != nil || w.Type != string(domain.CertifiedDevice) {
		return nil, fmt.Errorf("%w: malformed device certificate payload", domain.ErrInvalidData)
	}
	if !timestampsInTheBallpark(w.Timestamp, createdOn, ballpark) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCertification, ErrTooOld)
	}
	return &domain.DevicePayload{
		Kind:      domain.CertifiedDevice,
		Timestamp: w.Timestamp,
		DeviceID:  domain.DeviceID(w.DeviceID),
		VerifyKey: w.VerifyKey,
	}, nil
}

// CertifyUser signs a new user certificate.
func CertifyUser(certifierKey SigningKey, userID domain.UserID, publicKey []byte, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(userWire{
		Type:      string(domain.CertifiedUser),
		Timestamp: now,
		UserID:    string(userID),
		PublicKey: publicKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	return signAndAddMeta(certifierKey, payload), nil
}

// ValidatePayloadCertifiedUser verifies a user certificate's signature and
// ballpark timestamp.
func ValidatePayloadCertifiedUser(certifierKey []byte, certified []byte, createdOn time.Time, ballpark time.Duration) (*domain.UserPayload, error) {
	raw, err := verifySignatureFrom(certifierKey, certified)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCertification, err)
	}
	var w userWire
	if err := json.Unmarshal(raw, &w); err != nil || w.Type != string(domain.CertifiedUser) {
		return nil, fmt.Errorf("%w: malformed user certificate payload", domain.ErrInvalidData)
	}
	if !timestampsInTheBallpark(w.Timestamp, createdOn, ballpark) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCertification, ErrTooOld)
	}
	return &domain.UserPayload{
		Kind:      domain.CertifiedUser,
		Timestamp: w.Timestamp,
		UserID:    domain.UserID(w.UserID),
		PublicKey: w.PublicKey,
	}, nil
}

// CertifyDeviceRevocation signs a device revocation certificate.
func CertifyDeviceRevocation(certifierKey SigningKey, revokedDeviceID domain.DeviceID, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(deviceRevocationWire{
		Type:      string(domain.CertifiedDeviceRevocation),
		Timestamp: now,
		DeviceID:  string(revokedDeviceID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidData, err)
	}
	return signAndAddMeta(certifierKey, payload), nil
}

// ValidatePayloadCertifiedDeviceRevocation verifies a device-revocation
// certificate's signature and ballpark timestamp.
func ValidatePayloadCertifiedDeviceRevocation(certifierKey []byte, certified []byte, revokedOn time.Time, ballpark time.Duration) (*domain.DeviceRevocationPayload, error) {
	raw, err := verifySignatureFrom(certifierKey, certified)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCertification, err)
	}
	var w deviceRevocationWire
	if err := json.Unmarshal(raw, &w); err != nil || w.Type != string(domain.CertifiedDeviceRevocation) {
		return nil, fmt.Errorf("%w: malformed device revocation payload", domain.ErrInvalidData)
	}
	if !timestampsInTheBallpark(w.Timestamp, revokedOn, ballpark) {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidCertification, ErrTooOld)
	}
	return &domain.DeviceRevocationPayload{
		Kind:      domain.CertifiedDeviceRevocation,
		Timestamp: w.Timestamp,
		DeviceID:  domain.DeviceID(w.DeviceID),
	}, nil
}
