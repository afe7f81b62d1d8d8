package memory

import (
	"context"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type deviceRepo struct{ txn *memdb.Txn }

func (r deviceRepo) Create(ctx context.Context, d *domain.Device) error {
	key := scopedKey(d.OrganizationID, string(d.DeviceID))
	if existing, _ := r.txn.First("device", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	return r.txn.Insert("device", &deviceRow{Key: key, Org: orgKey(d.OrganizationID), Data: d})
}

func (r deviceRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.DeviceID) (*domain.Device, error) {
	raw, err := r.txn.First("device", "id", scopedKey(org, string(id)))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*deviceRow).Data, nil
}

func (r deviceRepo) ListByUser(ctx context.Context, org domain.OrganizationID, user domain.UserID) ([]*domain.Device, error) {
	it, err := r.txn.Get("device", "org", orgKey(org))
	if err != nil {
		return nil, err
	}
	var out []*domain.Device
	for raw := it.Next(); raw != nil; raw = it.Next() {
		d := raw.(*deviceRow).Data
		if d.DeviceID.UserID() == user {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r deviceRepo) ListKnown(ctx context.Context, org domain.OrganizationID) ([]*domain.Device, error) {
	it, err := r.txn.Get("device", "org", orgKey(org))
	if err != nil {
		return nil, err
	}
	var out []*domain.Device
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*deviceRow).Data)
	}
	return out, nil
}

func (r deviceRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error {
	d, err := r.Get(ctx, org, id)
	if err != nil {
		return err
	}
	updated := *d
	updated.RevokedOn = revocation.RevokedOn
	updated.RevocationCertifier = revocation.RevocationCertifier
	updated.RevokedDeviceCertificate = revocation.RevokedDeviceCertificate
	return r.txn.Insert("device", &deviceRow{Key: scopedKey(org, string(id)), Org: orgKey(org), Data: &updated})
}

func (r deviceRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	it, err := r.txn.Get("device", "org", orgKey(org))
	if err != nil {
		return 0, err
	}
	count := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		count++
	}
	return count, nil
}

func (r deviceRepo) CreateInvitation(ctx context.Context, inv *domain.DeviceInvitation) error {
	key := deviceInvitationKey(inv.OrganizationID, inv.Token)
	return r.txn.Insert("device_invitation", &deviceInvitationRow{Key: key, Data: inv})
}

func (r deviceRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.DeviceInvitation, error) {
	raw, err := r.txn.First("device_invitation", "id", deviceInvitationKey(org, token))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*deviceInvitationRow).Data, nil
}

func (r deviceRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	inv, err := r.GetInvitation(ctx, org, token)
	if err != nil {
		return err
	}
	now := time.Now()
	updated := *inv
	updated.CancelledOn = &now
	return r.txn.Insert("device_invitation", &deviceInvitationRow{Key: deviceInvitationKey(org, token), Data: &updated})
}

func (r deviceRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	inv, err := r.GetInvitation(ctx, org, token)
	if err != nil {
		return err
	}
	now := time.Now()
	updated := *inv
	updated.ClaimedOn = &now
	return r.txn.Insert("device_invitation", &deviceInvitationRow{Key: deviceInvitationKey(org, token), Data: &updated})
}
