package memory

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type organizationRepo struct{ txn *memdb.Txn }

func (r organizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	key := orgKey(org.ID)
	if existing, _ := r.txn.First("organization", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	return r.txn.Insert("organization", &organizationRow{Key: key, Data: org})
}

func (r organizationRepo) Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	raw, err := r.txn.First("organization", "id", orgKey(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*organizationRow).Data, nil
}

func (r organizationRepo) MarkBootstrapped(ctx context.Context, id domain.OrganizationID, rootVerifyKey []byte) error {
	org, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	updated := *org
	updated.BootstrapDone = true
	updated.RootVerifyKey = rootVerifyKey
	return r.txn.Insert("organization", &organizationRow{Key: orgKey(id), Data: &updated})
}

func (r organizationRepo) CreateBootstrapToken(ctx context.Context, tok *domain.BootstrapToken) error {
	key := scopedKey(tok.OrganizationID, tok.Token)
	return r.txn.Insert("bootstrap_token", &bootstrapTokenRow{Key: key, Data: tok})
}

func (r organizationRepo) ConsumeBootstrapToken(ctx context.Context, org domain.OrganizationID, token string) (*domain.BootstrapToken, error) {
	key := scopedKey(org, token)
	raw, err := r.txn.First("bootstrap_token", "id", key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotAllowed
	}
	tok := raw.(*bootstrapTokenRow).Data
	if tok.ConsumedOn != nil {
		return nil, domain.ErrNotAllowed
	}
	consumed := *tok
	consumedAt := time.Now()
	consumed.ConsumedOn = &consumedAt
	if err := r.txn.Insert("bootstrap_token", &bootstrapTokenRow{Key: key, Data: &consumed}); err != nil {
		return nil, err
	}
	return tok, nil
}
