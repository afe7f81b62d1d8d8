// Package block implements the opaque-data storage engine of spec.md §4.4,
// grounded on the realm-access checks and metadata/body split of
// original_source/parsec/backend/memory/block.py
// (_check_realm_read_access/_check_realm_write_access), with the
// metadata-then-blob write order spec.md §4.4 calls for instead of the
// original's blob-then-metadata order.
package block

import (
	"context"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Service struct {
	driver     ports.Driver
	blockstore ports.BlockStore
	log        *zap.Logger
}

func NewService(driver ports.Driver, blockstore ports.BlockStore, log *zap.Logger) ports.BlockService {
	return &Service{driver: driver, blockstore: blockstore, log: log}
}

var _ ports.BlockService = (*Service)(nil)

func (s *Service) checkRealmAccess(ctx context.Context, tx ports.Tx, org domain.OrganizationID, realmID domain.RealmID, who domain.UserID, needWrite bool) error {
	realm, err := tx.Realms().Get(ctx, org, realmID)
	if err != nil {
		return domain.ErrNotFound
	}
	roles, err := tx.Realms().CurrentRoles(ctx, org, realmID)
	if err != nil {
		return err
	}
	role, ok := roles[who]
	if !ok {
		return domain.ErrNotAllowed
	}
	if needWrite && !role.CanWriteVlobsAndBlocks() {
		return domain.ErrNotAllowed
	}
	if needWrite && realm.Status.InMaintenance {
		return domain.ErrInMaintenance
	}
	return nil
}

func (s *Service) Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, realmID domain.RealmID, data []byte, author domain.DeviceID) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.checkRealmAccess(ctx, tx, org, realmID, author.UserID(), true); err != nil {
		return err
	}
	if _, err := tx.Blocks().GetMeta(ctx, org, id); err == nil {
		return domain.ErrAlreadyExists
	}

	meta := &domain.Block{OrganizationID: org, BlockID: id, RealmID: realmID, Author: author, Size: len(data)}
	if err := tx.Blocks().CreateMeta(ctx, meta); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	// Metadata is committed first so a concurrent create of the same
	// block_id is rejected deterministically; if writing the body fails,
	// the metadata row is rolled back by deleting it in a follow-up
	// transaction rather than leaving a metadata entry with no body.
	if err := s.blockstore.Create(ctx, org, id, data); err != nil {
		if rollbackErr := s.rollbackMeta(ctx, org, id); rollbackErr != nil {
			s.log.Error("failed to roll back block metadata after body write failure",
				zap.String("block_id", id.String()), zap.Error(rollbackErr))
		}
		return err
	}
	return nil
}

func (s *Service) rollbackMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) error {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := tx.Blocks().DeleteMeta(ctx, org, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID, author domain.DeviceID) ([]byte, error) {
	tx, err := s.driver.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	meta, err := tx.Blocks().GetMeta(ctx, org, id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	if err := s.checkRealmAccess(ctx, tx, org, meta.RealmID, author.UserID(), false); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.blockstore.Read(ctx, org, id)
}
