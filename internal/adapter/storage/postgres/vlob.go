package postgres

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type vlobRepo struct{ db *gorm.DB }

func (r vlobRepo) Create(ctx context.Context, v *domain.Vlob, atom *domain.VlobAtom) error {
	if err := r.db.Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return r.AppendAtom(ctx, atom)
}

func (r vlobRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (*domain.Vlob, error) {
	var v domain.Vlob
	if err := r.db.First(&v, "organization_id = ? AND vlob_id = ?", string(org), id.String()).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// AppendAtom checks contiguity explicitly (version must be exactly
// MaxVersion+1) rather than relying solely on the table's
// (organization_id, vlob_id, version) primary key: a unique-constraint
// violation alone only catches an exact-duplicate version, not a gap.
func (r vlobRepo) AppendAtom(ctx context.Context, atom *domain.VlobAtom) error {
	maxVersion, err := r.MaxVersion(ctx, atom.OrganizationID, atom.VlobID)
	if err != nil {
		return err
	}
	if atom.Version != maxVersion+1 {
		return domain.ErrBadVersion
	}
	if err := r.db.Create(atom).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBadVersion
		}
		return err
	}
	return nil
}

func (r vlobRepo) MaxVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (int, error) {
	var max sql.NullInt64
	if err := r.db.Model(&domain.VlobAtom{}).
		Where("organization_id = ? AND vlob_id = ?", string(org), id.String()).
		Select("MAX(version)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (r vlobRepo) ReadVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int) (*domain.VlobAtom, error) {
	var atom domain.VlobAtom
	if err := r.db.First(&atom, "organization_id = ? AND vlob_id = ? AND version = ?", string(org), id.String(), version).Error; err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &atom, nil
}

func (r vlobRepo) ReadAtTimestamp(ctx context.Context, org domain.OrganizationID, id domain.VlobID, at time.Time) (*domain.VlobAtom, error) {
	var atom domain.VlobAtom
	err := r.db.Where("organization_id = ? AND vlob_id = ? AND timestamp <= ?", string(org), id.String(), at).
		Order("version DESC").
		First(&atom).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &atom, nil
}

func (r vlobRepo) ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error) {
	var atoms []*domain.VlobAtom
	if err := r.db.Where("organization_id = ? AND vlob_id = ?", string(org), id.String()).
		Order("version ASC").
		Find(&atoms).Error; err != nil {
		return nil, err
	}
	return atoms, nil
}

func (r vlobRepo) ListForReencryption(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, oldRevision, size int) ([]*domain.VlobAtom, error) {
	var atoms []*domain.VlobAtom
	err := r.db.Joins("JOIN vlobs ON vlobs.organization_id = vlob_atoms.organization_id AND vlobs.vlob_id = vlob_atoms.vlob_id").
		Where("vlob_atoms.organization_id = ? AND vlobs.realm_id = ? AND vlob_atoms.encryption_revision = ?",
			string(org), realm.String(), oldRevision).
		Order("vlob_atoms.vlob_id ASC, vlob_atoms.version ASC").
		Limit(size).
		Find(&atoms).Error
	if err != nil {
		return nil, err
	}
	return atoms, nil
}

func (r vlobRepo) SaveReencryptedAtom(ctx context.Context, atom *domain.VlobAtom) error {
	return r.db.Model(&domain.VlobAtom{}).
		Where("organization_id = ? AND vlob_id = ? AND version = ?", string(atom.OrganizationID), atom.VlobID.String(), atom.Version).
		Update("encryption_revision", atom.EncryptionRevision).Error
}
