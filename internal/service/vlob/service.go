// Package vlob implements the versioned ciphertext storage engine of
// spec.md §4.3, grounded on the strict monotonic version-contiguity and
// create/read/update triad of
// original_source/parsec/backend/drivers/memory/vlob.py, generalized from
// that driver's trust-seed access control to the realm-role ACL of
// spec.md §4.2.
package vlob

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Service struct {
	driver   ports.Driver
	ballpark time.Duration
	log      *zap.Logger
}

func NewService(driver ports.Driver, ballpark time.Duration, log *zap.Logger) ports.VlobService {
	if ballpark <= 0 {
		ballpark = 30 * time.Minute
	}
	return &Service{driver: driver, ballpark: ballpark, log: log}
}

var _ ports.VlobService = (*Service)(nil)

func (s *Service) inBallpark(ts time.Time) bool {
	d := time.Since(ts)
	if d < 0 {
		d = -d
	}
	return d < s.ballpark
}

func (s *Service) realmRole(ctx context.Context, tx ports.Tx, org domain.OrganizationID, realmID domain.RealmID, who domain.UserID) (domain.Role, error) {
	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return "", err
	}
	role, ok := roles[who]
	if !ok {
		return "", domain.ErrNotAllowed
	}
	return role, nil
}

func (s *Service) Create(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, id domain.VlobID, blob []byte, timestamp time.Time, encryptionRevision int, author domain.DeviceID) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Vlobs().Get(ctx, org, id); err == nil {
		return domain.ErrAlreadyExists
	}

	realm, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return err
	}
	if realm.Status.InMaintenance {
		return domain.ErrInMaintenance
	}
	if encryptionRevision != realm.EncryptionRevision {
		return domain.ErrBadEncryptionRevision
	}

	role, err := s.realmRole(ctx, tx, org, realmID, author.UserID())
	if err != nil {
		return err
	}
	if !role.CanWriteVlobsAndBlocks() {
		return domain.ErrNotAllowed
	}
	if !s.inBallpark(timestamp) {
		return domain.ErrBadTimestamp
	}

	v := &domain.Vlob{OrganizationID: org, VlobID: id, RealmID: realmID, CreatedOn: timestamp}
	atom := &domain.VlobAtom{
		OrganizationID:     org,
		VlobID:             id,
		Version:            1,
		Blob:               blob,
		Author:             author,
		Timestamp:          timestamp,
		EncryptionRevision: encryptionRevision,
	}
	if err := tx.Vlobs().Create(ctx, v, atom); err != nil {
		return err
	}

	checkpoint, err := tx.Realms().IncrementCheckpoint(ctx, org, realmID)
	if err != nil {
		return err
	}
	if err := tx.Realms().AppendChangeLogEntry(ctx, &domain.RealmVlobUpdate{
		OrganizationID: org, RealmID: realmID, Checkpoint: checkpoint, VlobID: id, Version: 1,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventRealmVlobsUpdated,
		Author:         author,
		RealmID:        realmID,
		Checkpoint:     checkpoint,
		At:             timestamp,
	})
}

func (s *Service) Read(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version *int, at *time.Time, author domain.DeviceID) (*domain.VlobAtom, error) {
	if version != nil && at != nil {
		return nil, fmt.Errorf("%w: version and timestamp are mutually exclusive", domain.ErrInvalidData)
	}

	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	v, err := tx.Vlobs().Get(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.realmRole(ctx, tx, org, v.RealmID, author.UserID()); err != nil {
		return nil, err
	}

	var atom *domain.VlobAtom
	switch {
	case version != nil:
		atom, err = tx.Vlobs().ReadVersion(ctx, org, id, *version)
	case at != nil:
		atom, err = tx.Vlobs().ReadAtTimestamp(ctx, org, id, *at)
	default:
		var max int
		max, err = tx.Vlobs().MaxVersion(ctx, org, id)
		if err == nil {
			atom, err = tx.Vlobs().ReadVersion(ctx, org, id, max)
		}
	}
	if err != nil {
		return nil, err
	}
	return atom, tx.Commit()
}

func (s *Service) Update(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int, blob []byte, timestamp time.Time, encryptionRevision int, author domain.DeviceID) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	v, err := tx.Vlobs().Get(ctx, org, id)
	if err != nil {
		return err
	}

	realm, err := tx.Realms().Get(ctx, org, v.RealmID)
	if err != nil {
		return err
	}
	if realm.Status.InMaintenance {
		return domain.ErrInMaintenance
	}
	if encryptionRevision != realm.EncryptionRevision {
		return domain.ErrBadEncryptionRevision
	}

	role, err := s.realmRole(ctx, tx, org, v.RealmID, author.UserID())
	if err != nil {
		return err
	}
	if !role.CanWriteVlobsAndBlocks() {
		return domain.ErrNotAllowed
	}
	if !s.inBallpark(timestamp) {
		return domain.ErrBadTimestamp
	}

	maxVersion, err := tx.Vlobs().MaxVersion(ctx, org, id)
	if err != nil {
		return err
	}
	if version != maxVersion+1 {
		return domain.ErrBadVersion
	}

	atom := &domain.VlobAtom{
		OrganizationID:     org,
		VlobID:             id,
		Version:            version,
		Blob:               blob,
		Author:             author,
		Timestamp:          timestamp,
		EncryptionRevision: encryptionRevision,
	}
	// AppendAtom enforces the conditional insert on (vlob_id, version): a
	// concurrent writer racing us for the same version must see
	// domain.ErrBadVersion, not silently overwrite.
	if err := tx.Vlobs().AppendAtom(ctx, atom); err != nil {
		return err
	}

	checkpoint, err := tx.Realms().IncrementCheckpoint(ctx, org, v.RealmID)
	if err != nil {
		return err
	}
	if err := tx.Realms().AppendChangeLogEntry(ctx, &domain.RealmVlobUpdate{
		OrganizationID: org, RealmID: v.RealmID, Checkpoint: checkpoint, VlobID: id, Version: version,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return s.driver.Events().Publish(ctx, ports.Event{
		OrganizationID: org,
		Kind:           ports.EventRealmVlobsUpdated,
		Author:         author,
		RealmID:        v.RealmID,
		Checkpoint:     checkpoint,
		At:             timestamp,
	})
}

func (s *Service) PollChanges(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, lastCheckpoint int) (int, map[domain.VlobID]int, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	realm, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return 0, nil, err
	}

	entries, err := tx.Realms().ChangesSince(ctx, org, realmID, lastCheckpoint)
	if err != nil {
		return 0, nil, err
	}
	changes := make(map[domain.VlobID]int, len(entries))
	for _, e := range entries {
		// Later entries for the same vlob override earlier ones: a vlob
		// updated twice since lastCheckpoint is reported at its newest
		// version only.
		changes[e.VlobID] = e.Version
	}
	return realm.Checkpoint, changes, tx.Commit()
}

func (s *Service) ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	atoms, err := tx.Vlobs().ListVersions(ctx, org, id)
	if err != nil {
		return nil, err
	}
	return atoms, tx.Commit()
}

func (s *Service) MaintenanceGetReencryptionBatch(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, encryptionRevision, size int) ([]*domain.VlobAtom, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	realm, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return nil, err
	}
	if !realm.Status.InMaintenance || realm.Status.Type != domain.MaintenanceReencryption {
		return nil, domain.ErrMaintenanceError
	}

	atoms, err := tx.Vlobs().ListForReencryption(ctx, org, realmID, encryptionRevision-1, size)
	if err != nil {
		return nil, err
	}
	return atoms, tx.Commit()
}

func (s *Service) MaintenanceSaveReencryptionBatch(ctx context.Context, org domain.OrganizationID, realmID domain.RealmID, encryptionRevision int, atoms []*domain.VlobAtom) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	realm, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return err
	}
	if !realm.Status.InMaintenance || realm.Status.Type != domain.MaintenanceReencryption {
		return domain.ErrMaintenanceError
	}

	for _, atom := range atoms {
		atom.EncryptionRevision = encryptionRevision
		if err := tx.Vlobs().SaveReencryptedAtom(ctx, atom); err != nil {
			return err
		}
	}
	return tx.Commit()
}
