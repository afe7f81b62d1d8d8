// Package bootstrap implements organization_bootstrap (spec.md §6,
// underspecified there; see SPEC_FULL.md §3.10): the anonymous command
// that roots a fresh organization's trust chain.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Service struct {
	driver  ports.Driver
	rootKey ports.RootKeyStore
	log     *zap.Logger
}

func NewService(driver ports.Driver, rootKey ports.RootKeyStore, log *zap.Logger) ports.BootstrapService {
	return &Service{driver: driver, rootKey: rootKey, log: log}
}

var _ ports.BootstrapService = (*Service)(nil)

// Bootstrap consumes the organization's one-time bootstrap token, mints
// its root keypair (the private half stays in rootKey custody), and
// persists the first user/device pair that roots every later certificate.
func (s *Service) Bootstrap(ctx context.Context, org domain.OrganizationID, token string, rootUser *domain.User, rootDevice *domain.Device, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orgRow, err := tx.Organizations().Get(ctx, org)
	if err != nil {
		return domain.ErrNotFound
	}
	if orgRow.BootstrapDone {
		return fmt.Errorf("%w: organization already bootstrapped", domain.ErrAlreadyExists)
	}

	if _, err := tx.Organizations().ConsumeBootstrapToken(ctx, org, token); err != nil {
		return fmt.Errorf("%w: invalid or already-consumed bootstrap token", domain.ErrNotAllowed)
	}

	verifyKey, err := s.rootKey.GenerateAndStore(ctx, org)
	if err != nil {
		return err
	}

	rootUser.OrganizationID = org
	rootUser.CreatedOn = now
	rootUser.UserCertifier = nil // root-signed
	rootDevice.OrganizationID = org
	rootDevice.CreatedOn = now
	rootDevice.DeviceCertifier = nil
	rootDevice.VerifyKey = verifyKey

	if err := tx.Users().Create(ctx, rootUser); err != nil {
		return err
	}
	if err := tx.Devices().Create(ctx, rootDevice); err != nil {
		return err
	}
	if err := tx.Organizations().MarkBootstrapped(ctx, org, verifyKey); err != nil {
		return err
	}

	return tx.Commit()
}
