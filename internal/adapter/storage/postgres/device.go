package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type deviceRepo struct{ db *gorm.DB }

func (r deviceRepo) Create(ctx context.Context, d *domain.Device) error {
	if err := r.db.Create(d).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r deviceRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.DeviceID) (*domain.Device, error) {
	var d domain.Device
	if err := r.db.First(&d, "organization_id = ? AND device_id = ?", string(org), string(id)).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r deviceRepo) ListByUser(ctx context.Context, org domain.OrganizationID, user domain.UserID) ([]*domain.Device, error) {
	var devices []*domain.Device
	if err := r.db.Where("organization_id = ? AND device_id LIKE ?", string(org), string(user)+"@%").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r deviceRepo) ListKnown(ctx context.Context, org domain.OrganizationID) ([]*domain.Device, error) {
	var devices []*domain.Device
	if err := r.db.Where("organization_id = ?", string(org)).Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r deviceRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.DeviceID, revocation *domain.Device) error {
	res := r.db.Model(&domain.Device{}).
		Where("organization_id = ? AND device_id = ?", string(org), string(id)).
		Updates(map[string]any{
			"revoked_on":                  revocation.RevokedOn,
			"revocation_certifier":        revocation.RevocationCertifier,
			"revoked_device_certificate":  revocation.RevokedDeviceCertificate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r deviceRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	var count int64
	if err := r.db.Model(&domain.Device{}).Where("organization_id = ?", string(org)).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r deviceRepo) CreateInvitation(ctx context.Context, inv *domain.DeviceInvitation) error {
	return r.db.Create(inv).Error
}

func (r deviceRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.DeviceInvitation, error) {
	var inv domain.DeviceInvitation
	if err := r.db.First(&inv, "organization_id = ? AND token = ?", string(org), token).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r deviceRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	res := r.db.Model(&domain.DeviceInvitation{}).
		Where("organization_id = ? AND token = ?", string(org), token).
		Update("cancelled_on", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r deviceRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	res := r.db.Model(&domain.DeviceInvitation{}).
		Where("organization_id = ? AND token = ?", string(org), token).
		Update("claimed_on", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
