package trustchain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

// ValidationCache memoizes "this device's own certification chain checks
// out cryptographically" across calls, typically backed by Redis or an
// in-process LRU (spec.md §4.1 ballpark/caching note). It never memoizes
// revocation state: every lookup re-reads the device row and re-checks
// whether it was revoked before the timestamp being verified.
type ValidationCache interface {
	IsChainValid(ctx context.Context, org domain.OrganizationID, device domain.DeviceID) bool
	MarkChainValid(ctx context.Context, org domain.OrganizationID, device domain.DeviceID)
}

// noopCache is used when no cache is configured; every device chain is
// re-verified on every call.
type noopCache struct{}

func (noopCache) IsChainValid(context.Context, domain.OrganizationID, domain.DeviceID) bool { return false }
func (noopCache) MarkChainValid(context.Context, domain.OrganizationID, domain.DeviceID)     {}

// visitState tracks per-call recursion state so a cycle in the signer graph
// is reported as a broken chain instead of recursing forever.
type visitState int

const (
	unvisited visitState = iota
	inProgress
	valid
)

// Verifier implements ports.TrustChainVerifier (spec.md §4.1) by walking the
// signer chain of a certificate up to the organization's root key, exactly
// as validate_user_with_trustchain does, except each device's own upstream
// chain is fetched on demand rather than supplied as a pre-built map.
type Verifier struct {
	driver   ports.Driver
	ballpark time.Duration
	cache    ValidationCache
	log      *zap.Logger
}

func NewVerifier(driver ports.Driver, ballpark time.Duration, cache ValidationCache, log *zap.Logger) *Verifier {
	if ballpark <= 0 {
		ballpark = MaxTSBallpark
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &Verifier{driver: driver, ballpark: ballpark, cache: cache, log: log}
}

var _ ports.TrustChainVerifier = (*Verifier)(nil)

func (v *Verifier) VerifyDevice(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.DevicePayload, error) {
	tx, err := v.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	visited := map[domain.DeviceID]visitState{}
	key, err := v.resolveCertifierKey(ctx, tx, org, env.CertifierID, now, "", visited)
	if err != nil {
		return nil, err
	}
	return ValidatePayloadCertifiedDevice(key, env.Signed, now, v.ballpark)
}

func (v *Verifier) VerifyUser(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.UserPayload, error) {
	tx, err := v.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	visited := map[domain.DeviceID]visitState{}
	key, err := v.resolveCertifierKey(ctx, tx, org, env.CertifierID, now, "", visited)
	if err != nil {
		return nil, err
	}
	return ValidatePayloadCertifiedUser(key, env.Signed, now, v.ballpark)
}

func (v *Verifier) VerifyDeviceRevocation(ctx context.Context, org domain.OrganizationID, env domain.Envelope, now time.Time) (*domain.DeviceRevocationPayload, error) {
	tx, err := v.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	visited := map[domain.DeviceID]visitState{}
	key, err := v.resolveCertifierKey(ctx, tx, org, env.CertifierID, now, "", visited)
	if err != nil {
		return nil, err
	}
	return ValidatePayloadCertifiedDeviceRevocation(key, env.Signed, now, v.ballpark)
}

// resolveCertifierKey returns the verify key that should have produced the
// signature over something timestamped at `timestamp`. A nil certifierID
// means the organization root key. Otherwise the certifier must itself be a
// known, chain-valid device that was not yet revoked at `timestamp`.
func (v *Verifier) resolveCertifierKey(ctx context.Context, tx ports.Tx, org domain.OrganizationID, certifierID *domain.DeviceID, timestamp time.Time, neededBy domain.DeviceID, visited map[domain.DeviceID]visitState) ([]byte, error) {
	if certifierID == nil {
		o, err := tx.Organizations().Get(ctx, org)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCertification, err)
		}
		return o.RootVerifyKey, nil
	}

	if err := v.validateDeviceChain(ctx, tx, org, *certifierID, visited); err != nil {
		return nil, err
	}

	certifier, err := tx.Devices().Get(ctx, org, *certifierID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: certifier %s not found", domain.ErrInvalidCertification, ErrBrokenChain, *certifierID)
	}
	if certifier.RevokedOn != nil && timestamp.After(*certifier.RevokedOn) {
		return nil, fmt.Errorf("%w: %w: %s signed %s at %s after its own revocation at %s",
			domain.ErrInvalidCertification, ErrSignedByRevokedDevice, *certifierID, neededBy, timestamp, *certifier.RevokedOn)
	}
	return certifier.VerifyKey, nil
}

// validateDeviceChain ensures device's own certification certificate (and,
// if revoked, its revocation certificate) check out, recursing into
// whoever signed them. A device re-entered while "in progress" means the
// signer graph has a cycle.
func (v *Verifier) validateDeviceChain(ctx context.Context, tx ports.Tx, org domain.OrganizationID, id domain.DeviceID, visited map[domain.DeviceID]visitState) error {
	switch visited[id] {
	case valid:
		return nil
	case inProgress:
		return fmt.Errorf("%w: %w: cycle detected at %s", domain.ErrInvalidCertification, ErrBrokenChain, id)
	}

	dev, err := tx.Devices().Get(ctx, org, id)
	if err != nil {
		return fmt.Errorf("%w: %w: missing device %s in chain", domain.ErrInvalidCertification, ErrBrokenChain, id)
	}

	if v.cache.IsChainValid(ctx, org, id) {
		visited[id] = valid
		return nil
	}

	visited[id] = inProgress

	certifierKey, err := v.resolveCertifierKey(ctx, tx, org, dev.DeviceCertifier, dev.CreatedOn, id, visited)
	if err != nil {
		return err
	}
	payload, err := ValidatePayloadCertifiedDevice(certifierKey, dev.DeviceCertificate, dev.CreatedOn, v.ballpark)
	if err != nil {
		return err
	}
	if payload.DeviceID != id {
		return fmt.Errorf("%w: certificate for %s actually names %s", domain.ErrInvalidCertification, id, payload.DeviceID)
	}

	if dev.RevokedOn != nil {
		revCertifierKey, err := v.resolveCertifierKey(ctx, tx, org, dev.RevocationCertifier, *dev.RevokedOn, id, visited)
		if err != nil {
			return err
		}
		if _, err := ValidatePayloadCertifiedDeviceRevocation(revCertifierKey, dev.RevokedDeviceCertificate, *dev.RevokedOn, v.ballpark); err != nil {
			return err
		}
	}

	v.cache.MarkChainValid(ctx, org, id)
	visited[id] = valid
	return nil
}
