package ports

import (
	"context"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// BlockStore is the pluggable body store for block engine blobs (spec.md
// §1: "blob-store drivers ... local disk, object storage"). Metadata
// always lives in the transactional store; BlockStore only ever sees
// opaque bytes keyed by (organization, block_id).
type BlockStore interface {
	Create(ctx context.Context, org domain.OrganizationID, id domain.BlockID, data []byte) error
	Read(ctx context.Context, org domain.OrganizationID, id domain.BlockID) ([]byte, error)
}
