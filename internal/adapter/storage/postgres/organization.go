package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type organizationRepo struct{ db *gorm.DB }

func (r organizationRepo) Create(ctx context.Context, org *domain.Organization) error {
	if err := r.db.Create(org).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r organizationRepo) Get(ctx context.Context, id domain.OrganizationID) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.First(&org, "id = ?", string(id)).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r organizationRepo) MarkBootstrapped(ctx context.Context, id domain.OrganizationID, rootVerifyKey []byte) error {
	res := r.db.Model(&domain.Organization{}).Where("id = ?", string(id)).
		Updates(map[string]any{"bootstrap_done": true, "root_verify_key": rootVerifyKey})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r organizationRepo) CreateBootstrapToken(ctx context.Context, tok *domain.BootstrapToken) error {
	return r.db.Create(tok).Error
}

func (r organizationRepo) ConsumeBootstrapToken(ctx context.Context, org domain.OrganizationID, token string) (*domain.BootstrapToken, error) {
	var tok domain.BootstrapToken
	if err := r.db.First(&tok, "organization_id = ? AND token = ?", string(org), token).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotAllowed
		}
		return nil, err
	}
	if tok.ConsumedOn != nil {
		return nil, domain.ErrNotAllowed
	}
	now := time.Now()
	if err := r.db.Model(&domain.BootstrapToken{}).
		Where("organization_id = ? AND token = ?", string(org), token).
		Update("consumed_on", now).Error; err != nil {
		return nil, err
	}
	return &tok, nil
}
