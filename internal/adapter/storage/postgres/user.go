package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r userRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.UserID) (*domain.User, error) {
	var u domain.User
	if err := r.db.First(&u, "organization_id = ? AND user_id = ?", string(org), string(id)).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r userRepo) Find(ctx context.Context, org domain.OrganizationID, query string) ([]*domain.User, error) {
	var users []*domain.User
	q := r.db.Where("organization_id = ?", string(org))
	if query != "" {
		q = q.Where("user_id ILIKE ?", "%"+query+"%")
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r userRepo) Revoke(ctx context.Context, org domain.OrganizationID, id domain.UserID, at time.Time) error {
	res := r.db.Model(&domain.User{}).
		Where("organization_id = ? AND user_id = ?", string(org), string(id)).
		Update("revoked_on", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r userRepo) Count(ctx context.Context, org domain.OrganizationID) (total, active int, err error) {
	var totalCount, activeCount int64
	if err := r.db.Model(&domain.User{}).Where("organization_id = ?", string(org)).Count(&totalCount).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.Model(&domain.User{}).
		Where("organization_id = ? AND revoked_on IS NULL", string(org)).
		Count(&activeCount).Error; err != nil {
		return 0, 0, err
	}
	return int(totalCount), int(activeCount), nil
}

func (r userRepo) CreateInvitation(ctx context.Context, inv *domain.UserInvitation) error {
	return r.db.Create(inv).Error
}

func (r userRepo) GetInvitation(ctx context.Context, org domain.OrganizationID, token string) (*domain.UserInvitation, error) {
	var inv domain.UserInvitation
	if err := r.db.First(&inv, "organization_id = ? AND token = ?", string(org), token).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r userRepo) CancelInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	res := r.db.Model(&domain.UserInvitation{}).
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

func (r userRepo) ClaimInvitation(ctx context.Context, org domain.OrganizationID, token string) error {
	res := r.db.Model(&domain.UserInvitation{}).
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
