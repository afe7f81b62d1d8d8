package memory

import (
	"context"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type blockRepo struct{ txn *memdb.Txn }

func (r blockRepo) CreateMeta(ctx context.Context, b *domain.Block) error {
	key := scopedKey(b.OrganizationID, b.BlockID.String())
	if existing, _ := r.txn.First("block", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	return r.txn.Insert("block", &blockRow{Key: key, Data: b})
}

func (r blockRepo) DeleteMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) error {
	key := scopedKey(org, id.String())
	raw, err := r.txn.First("block", "id", key)
	if err != nil {
		return err
	}
	if raw == nil {
		return domain.ErrNotFound
	}
	return r.txn.Delete("block", raw)
}

func (r blockRepo) GetMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) (*domain.Block, error) {
	raw, err := r.txn.First("block", "id", scopedKey(org, id.String()))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*blockRow).Data, nil
}
