package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type blockRepo struct{ db *gorm.DB }

func (r blockRepo) CreateMeta(ctx context.Context, b *domain.Block) error {
	if err := r.db.Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r blockRepo) DeleteMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) error {
	res := r.db.Where("organization_id = ? AND block_id = ?", string(org), id.String()).Delete(&domain.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r blockRepo) GetMeta(ctx context.Context, org domain.OrganizationID, id domain.BlockID) (*domain.Block, error) {
	var b domain.Block
	if err := r.db.First(&b, "organization_id = ? AND block_id = ?", string(org), id.String()).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
