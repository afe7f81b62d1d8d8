package memory

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type userRepo struct{ txn *memdb.Txn }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	key := scopedKey(u.OrganizationID, string(u.UserID))
	if existing, _ := r.txn.First("user", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	return r.txn.Insert("user", &userRow{Key: key, Org: orgKey(u.OrganizationID), Data: u})
}

func (r userRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error) {
	raw, err := r.txn.First("user", "id", scopedKey(org, string(id)))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*userRow).Data, nil
}

func (r userRepo) Find(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error) {
	it, err := r.txn.Get("user", "org", orgKey(org))
	if err != nil {
		return nil, err
	}
	var out []*domain.User
	q := strings.ToLower(query)
	for raw := it.Next(); raw != nil; raw = it.Next() {
		u := raw.(*userRow).Data
		if q == "" || strings.Contains(strings.ToLower(string(u.UserID)), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.UserID, at time.Time) error {
	u, err := r.Get(ctx, org, id)
	if err != nil {
		return err
	}
	updated := *u
	updated.RevokedOn = &at
	return r.txn.Insert("user", &userRow{Key: scopedKey(org, string(id)), Org: orgKey(org), Data: &updated})
}

func (r userRepo) Count(ctx context.Context, org domain.OrganizationID) (total, active int, err error) {
	it, err := r.txn.Get("user", "org", orgKey(org))
	if err != nil {
		return 0, 0, err
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		total++
		if raw.(*userRow).Data.RevokedOn == nil {
			active++
		}
	}
	return total, active, nil
}

func (r userRepo) CreateInvitation(ctx context.Context, inv *domain.UserInvitation) error {
	key := userInvitationKey(inv.OrganizationID, inv.Token)
	return r.txn.Insert("user_invitation", &userInvitationRow{Key: key, Data: inv})
}

func (r userRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.UserInvitation, error) {
	raw, err := r.txn.First("user_invitation", "id", userInvitationKey(org, token))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*userInvitationRow).Data, nil
}

func (r userRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	inv, err := r.GetInvitation(ctx, org, token)
	if err != nil {
		return err
	}
	now := time.Now()
	updated := *inv
	updated.CancelledOn = &now
	return r.txn.Insert("user_invitation", &userInvitationRow{Key: userInvitationKey(org, token), Data: &updated})
}

func (r userRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	inv, err := r.GetInvitation(ctx, org, token)
	if err != nil {
		return err
	}
	now := time.Now()
	updated := *inv
	updated.ClaimedOn = &now
	return r.txn.Insert("user_invitation", &userInvitationRow{Key: userInvitationKey(org, token), Data: &updated})
}
