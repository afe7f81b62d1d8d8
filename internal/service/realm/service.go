// Package realm implements the per-realm role-based access model and
// maintenance state machine of spec.md §4.2.
package realm

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

func NewService(driver ports.Driver, log *zap.Logger) ports.RealmService {
	return &Service{driver: driver, log: log}
}

var _ ports.RealmService = (*Service)(nil)

func (s *Service) Create(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, owner domain.DeviceID, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Realms().Get(ctx, org, realmID); err == nil {
		return domain.ErrAlreadyExists
	}

	r := &domain.Realm{
		OrganizationID:     org,
		RealmID:            realmID,
		EncryptionRevision: 1,
		Checkpoint:         0,
		CreatedOn:          now,
	}
	if err := tx.Realms().Create(ctx, r); err != nil {
		return err
	}

	ownerRole := domain.RoleOwner
	cert := &domain.RoleCertificate{
		RealmID:   realmID,
		Seq:       1,
		UserID:    owner.UserID(),
		Role:      &ownerRole,
		GrantedBy: owner,
		GrantedOn: now,
	}
	if err := tx.Realms().AppendRoleCertificate(ctx, cert); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Service) GetRoles(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID) (map[domain.UserID]domain.Role, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return nil, err
	}
	return roles, tx.Commit()
}

func (s *Service) Status(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID) (*domain.Realm, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	r, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return nil, err
	}
	return r, tx.Commit()
}

// countOwners exists because a realm must retain at least one OWNER at all
// times outside its creation window (spec.md §4.2 invariant).
func countOwners(roles map[domain.UserID]domain.Role) int {
	n := 0
	for _, role := range roles {
		if role == domain.RoleOwner {
			n++
		}
	}
	return n
}

func (s *Service) UpdateRole(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, target domain.UserID, role *domain.Role, signer domain.DeviceID, cert []byte, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return err
	}
	if r.Status.InMaintenance {
		return domain.ErrInMaintenance
	}

	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return err
	}

	signerRole, isMember := roles[signer.UserID()]
	if !isMember || !signerRole.CanManageRoles() {
		return domain.ErrNotAllowed
	}
	targetRole, targetIsMember := roles[target]
	touchesOwner := (role != nil && *role == domain.RoleOwner) || (targetIsMember && targetRole == domain.RoleOwner)
	if touchesOwner && signerRole != domain.RoleOwner {
		return domain.ErrNotAllowed
	}
	if (role == nil && !targetIsMember) || (role != nil && targetIsMember && targetRole == *role) {
		return domain.ErrAlreadyGranted
	}

	if currentTargetRole, wasOwner := roles[target]; wasOwner && currentTargetRole == domain.RoleOwner {
		demoted := role == nil || *role != domain.RoleOwner
		if demoted && countOwners(roles) <= 1 {
			return fmt.Errorf("%w: realm must retain at least one owner", domain.ErrNotAllowed)
		}
	}

	log, err := tx.Realms().RoleLog(ctx, org, realmID)
	if err != nil {
		return err
	}
	newCert := &domain.RoleCertificate{
		RealmID:     realmID,
		Seq:         len(log) + 1,
		UserID:      target,
		Role:        role,
		GrantedBy:   signer,
		GrantedOn:   now,
		Certificate: cert,
	}
	if err := tx.Realms().AppendRoleCertificate(ctx, newCert); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventRealmRolesUpdated,
		Author:         signer,
		RealmID:        realmID,
		At:             now,
	})
}

func (s *Service) StartMaintenance(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, kind domain.MaintenanceType, signer domain.DeviceID, encryptionRevision int, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return err
	}
	if r.Status.InMaintenance {
		return domain.ErrInMaintenance
	}

	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return err
	}
	if signerRole, ok := roles[signer.UserID()]; !ok || !signerRole.CanManageRoles() {
		return domain.ErrNotAllowed
	}

	if kind == domain.MaintenanceReencryption {
		if encryptionRevision != r.EncryptionRevision+1 {
			return domain.ErrBadEncryptionRevision
		}
		if err := tx.Realms().SetEncryptionRevision(ctx, org, realmID, encryptionRevision); err != nil {
			return err
		}
	}

	status := domain.RealmStatus{InMaintenance: true, Type: kind, StartedOn: now, StartedBy: signer}
	if err := tx.Realms().UpdateStatus(ctx, org, realmID, status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventRealmMaintenanceStarted,
		Author:         signer,
		RealmID:        realmID,
		At:             now,
	})
}

func (s *Service) FinishMaintenance(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, signer domain.DeviceID, now time.Time) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return err
	}
	if !r.Status.InMaintenance {
		return domain.ErrMaintenanceError
	}

	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return err
	}
	if signerRole, ok := roles[signer.UserID()]; !ok || !signerRole.CanManageRoles() {
		return domain.ErrNotAllowed
	}

	if err := tx.Realms().UpdateStatus(ctx, org, realmID, domain.RealmStatus{}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventRealmMaintenanceFinished,
		Author:         signer,
		RealmID:        realmID,
		At:             now,
	})
}
