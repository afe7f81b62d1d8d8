package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type realmRepo struct{ db *gorm.DB }

func (r realmRepo) Create(ctx context.Context, realm *domain.Realm) error {
	if err := r.db.Create(realm).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r realmRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error) {
	var realm domain.Realm
	if err := r.db.First(&realm, "organization_id = ? AND realm_id = ?", string(org), id.String()).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &realm, nil
}

func (r realmRepo) UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error {
	res := r.db.Model(&domain.Realm{}).
		Where("organization_id = ? AND realm_id = ?", string(org), id.String()).
		Updates(map[string]any{
			"status_in_maintenance": status.InMaintenance,
			"status_type":           status.Type,
			"status_started_on":     status.StartedOn,
			"status_started_by":     status.StartedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r realmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	var checkpoint int
	row := r.db.Raw(
		`UPDATE realms SET checkpoint = checkpoint + 1
		 WHERE organization_id = ? AND realm_id = ? RETURNING checkpoint`,
		string(org), id.String(),
	).Row()
	if err := row.Scan(&checkpoint); err != nil {
		if isNotFound(err) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return checkpoint, nil
}

func (r realmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	res := r.db.Model(&domain.Realm{}).
		Where("organization_id = ? AND realm_id = ?", string(org), id.String()).
		Update("encryption_revision", rev)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r realmRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	var count int64
	if err := r.db.Model(&domain.Realm{}).Where("organization_id = ?", string(org)).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r realmRepo) RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error) {
	var certs []*domain.RoleCertificate
	if err := r.db.Where("realm_id = ?", id.String()).Order("seq ASC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (r realmRepo) CurrentRoles(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (map[domain.UserID]domain.Role, error) {
	log, err := r.RoleLog(ctx, org, id)
	if err != nil {
		return nil, err
	}
	roles := map[domain.UserID]domain.Role{}
	for _, cert := range log {
		if cert.Role == nil {
			delete(roles, cert.UserID)
		} else {
			roles[cert.UserID] = *cert.Role
		}
	}
	return roles, nil
}

func (r realmRepo) AppendRoleCertificate(ctx context.Context, cert *domain.RoleCertificate) error {
	if err := r.db.Create(cert).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r realmRepo) AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error {
	return r.db.Create(entry).Error
}

func (r realmRepo) ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error) {
	var entries []*domain.RealmVlobUpdate
	if err := r.db.Where("organization_id = ? AND realm_id = ? AND checkpoint > ?", string(org), id.String(), checkpoint).
		Order("checkpoint ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
