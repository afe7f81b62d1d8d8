// Package identity implements the user/device provisioning commands of
// spec.md §6: lookup, invite, cancel, create (claim), and revoke, for
// both users and devices, plus organization_stats.
package identity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Service struct {
	driver ports.Driver
	log    *zap.Logger
}

func NewService(driver ports.Driver, log *zap.Logger) ports.IdentityService {
	return &Service{driver: driver, log: log}
}

var _ ports.IdentityService = (*Service)(nil)

func (s *Service) GetUser(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	u, err := tx.Users().Get(ctx, org, id)
	if err != nil {
		return nil, err
	}
	return u, tx.Commit()
}

func (s *Service) FindUsers(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	users, err := tx.Users().Find(ctx, org, query)
	if err != nil {
		return nil, err
	}
	return users, tx.Commit()
}

func (s *Service) InviteUser(ctx context.Context, org domain.OrganizationID, greeter domain.UserID, claimerEmail string, now time.Time) (*domain.UserInvitation, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Users().Get(ctx, org, greeter); err != nil {
		return nil, fmt.Errorf("%w: greeter does not exist", domain.ErrNotFound)
	}

	inv := &domain.UserInvitation{
		OrganizationID: org,
		Token:          domain.NewInvitationToken(),
		ClaimerEmail:   claimerEmail,
		GreeterUserID:  greeter,
		CreatedOn:      now,
	}
	if err := tx.Users().CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	return inv, tx.Commit()
}

func (s *Service) CancelUserInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inv, err := tx.Users().GetInvitation(ctx, org, token)
	if err != nil {
		return domain.ErrNotFound
	}
	if !inv.Active(time.Time{}) {
		return fmt.Errorf("%w: invitation already claimed or cancelled", domain.ErrAlreadyExists)
	}
	if err := tx.Users().CancelInvitation(ctx, org, token); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateUser claims an active invitation: it provisions the user and its
// first device atomically, then marks the invitation claimed. Both
// certificates are assumed already validated by the trust-chain verifier
// before this is called.
func (s *Service) CreateUser(ctx context.Context, org domain.OrganizationID, inviteToken string, user *domain.User, firstDevice *domain.Device, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inv, err := tx.Users().GetInvitation(ctx, org, inviteToken)
	if err != nil {
		return domain.ErrNotFound
	}
	if !inv.Active(now) {
		return fmt.Errorf("%w: invitation already claimed or cancelled", domain.ErrAlreadyExists)
	}
	if _, err := tx.Users().Get(ctx, org, user.UserID); err == nil {
		return domain.ErrAlreadyExists
	}

	if err := tx.Users().Create(ctx, user); err != nil {
		return err
	}
	if err := tx.Devices().Create(ctx, firstDevice); err != nil {
		return err
	}
	if err := tx.Users().ClaimInvitation(ctx, org, inviteToken); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) RevokeUser(ctx context.Context, org domain.OrganizationID, id domain.UserID, revoker domain.DeviceID, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	u, err := tx.Users().Get(ctx, org, id)
	if err != nil {
		return domain.ErrNotFound
	}
	if u.Revoked(now) {
		return fmt.Errorf("%w: user already revoked", domain.ErrAlreadyExists)
	}
	if err := tx.Users().Revoke(ctx, org, id, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) InviteDevice(ctx context.Context, org domain.OrganizationID, greeter domain.UserID, now time.Time) (*domain.DeviceInvitation, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Users().Get(ctx, org, greeter); err != nil {
		return nil, fmt.Errorf("%w: greeter does not exist", domain.ErrNotFound)
	}

	inv := &domain.DeviceInvitation{
		OrganizationID: org,
		Token:          domain.NewInvitationToken(),
		GreeterUserID:  greeter,
		CreatedOn:      now,
	}
	if err := tx.Devices().CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}
	return inv, tx.Commit()
}

func (s *Service) CancelDeviceInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inv, err := tx.Devices().GetInvitation(ctx, org, token)
	if err != nil {
		return domain.ErrNotFound
	}
	if !inv.Active(time.Time{}) {
		return fmt.Errorf("%w: invitation already claimed or cancelled", domain.ErrAlreadyExists)
	}
	if err := tx.Devices().CancelInvitation(ctx, org, token); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) CreateDevice(ctx context.Context, org domain.OrganizationID, inviteToken string, device *domain.Device, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	inv, err := tx.Devices().GetInvitation(ctx, org, inviteToken)
	if err != nil {
		return domain.ErrNotFound
	}
	if !inv.Active(now) {
		return fmt.Errorf("%w: invitation already claimed or cancelled", domain.ErrAlreadyExists)
	}
	if _, err := tx.Devices().Get(ctx, org, device.DeviceID); err == nil {
		return domain.ErrAlreadyExists
	}

	if err := tx.Devices().Create(ctx, device); err != nil {
		return err
	}
	if err := tx.Devices().ClaimInvitation(ctx, org, inviteToken); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) RevokeDevice(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	d, err := tx.Devices().Get(ctx, org, id)
	if err != nil {
		return domain.ErrNotFound
	}
	if d.Revoked(now) {
		return fmt.Errorf("%w: device already revoked", domain.ErrAlreadyExists)
	}
	if err := tx.Devices().Revoke(ctx, org, id, revocation); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) OrganizationStats(ctx context.Context, org domain.OrganizationID) (*ports.OrganizationStats, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	total, active, err := tx.Users().Count(ctx, org)
	if err != nil {
		return nil, err
	}
	devices, err := tx.Devices().Count(ctx, org)
	if err != nil {
		return nil, err
	}
	realms, err := tx.Realms().Count(ctx, org)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &ports.OrganizationStats{Users: total, ActiveUsers: active, Devices: devices, Realms: realms}, nil
}
