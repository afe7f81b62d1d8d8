package session

import (
	"context"
	"fmt"
	"time"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// verifyUserCertificate checks that user.UserCertificate is a certificate
// chain-valid up to the organization root and that its payload actually
// names the user being created, before any dispatcher lets IdentityService
// persist it. This is the enforcement point SPEC_FULL.md §4.1 requires:
// IdentityService itself trusts its caller to have already verified.
func verifyUserCertificate(ctx context.Context, tc ports.TrustChainVerifier, org domain.OrganizationID, user *domain.User, now time.Time) error {
	if tc == nil {
		return fmt.Errorf("%w: trust chain verifier not configured", domain.ErrInvalidCertification)
	}
	env := domain.Envelope{CertifierID: user.UserCertifier, Signed: user.UserCertificate}
	payload, err := tc.VerifyUser(ctx, org, env, now)
	if err != nil {
		return err
	}
	if payload.UserID != user.UserID {
		return fmt.Errorf("%w: certificate names %s but create requested %s", domain.ErrInvalidCertification, payload.UserID, user.UserID)
	}
	if string(payload.PublicKey) != string(user.PublicKey) {
		return fmt.Errorf("%w: certificate public key does not match claimed user", domain.ErrInvalidCertification)
	}
	return nil
}

// verifyDeviceCertificate is the device analog of verifyUserCertificate,
// used both for a user's first device and for every later device_create.
func verifyDeviceCertificate(ctx context.Context, tc ports.TrustChainVerifier, org domain.OrganizationID, device *domain.Device, now time.Time) error {
	if tc == nil {
		return fmt.Errorf("%w: trust chain verifier not configured", domain.ErrInvalidCertification)
	}
	env := domain.Envelope{CertifierID: device.DeviceCertifier, Signed: device.DeviceCertificate}
	payload, err := tc.VerifyDevice(ctx, org, env, now)
	if err != nil {
		return err
	}
	if payload.DeviceID != device.DeviceID {
		return fmt.Errorf("%w: certificate names %s but create requested %s", domain.ErrInvalidCertification, payload.DeviceID, device.DeviceID)
	}
	if string(payload.VerifyKey) != string(device.VerifyKey) {
		return fmt.Errorf("%w: certificate verify key does not match claimed device", domain.ErrInvalidCertification)
	}
	return nil
}
