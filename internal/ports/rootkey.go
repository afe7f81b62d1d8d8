package ports

import (
	"context"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// RootKeyStore custodies each organization's root nacl/sign keypair. The
// private half never leaves the store: GenerateAndStore returns only the
// verify key and Sign signs inside the store. Bootstrap calls only
// GenerateAndStore (SPEC_FULL.md §3.10).
type RootKeyStore interface {
	GenerateAndStore(ctx context.Context, org domain.OrganizationID) (verifyKey []byte, err error)
	Sign(ctx context.Context, org domain.OrganizationID, payload []byte) (signed []byte, err error)
}
