package memory

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type vlobRepo struct{ txn *memdb.Txn }

func (r vlobRepo) Create(ctx context.Context, v *domain.Vlob, atom *domain.VlobAtom) error {
	key := scopedKey(v.OrganizationID, v.VlobID.String())
	if existing, _ := r.txn.First("vlob", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	if err := r.txn.Insert("vlob", &vlobRow{Key: key, Org: orgKey(v.OrganizationID), Data: v}); err != nil {
		return err
	}
	return r.AppendAtom(ctx, atom)
}

func (r vlobRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (*domain.Vlob, error) {
	raw, err := r.txn.First("vlob", "id", scopedKey(org, id.String()))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*vlobRow).Data, nil
}

func (r vlobRepo) atoms(org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error) {
	it, err := r.txn.Get("vlob_atom", "vlob", id.String())
	if err != nil {
		return nil, err
	}
	var out []*domain.VlobAtom
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*vlobAtomRow).Data)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// AppendAtom conditionally inserts one vlob atom: it fails with
// domain.ErrBadVersion if atom.Version isn't exactly MaxVersion+1, the
// single-writer invariant spec.md §4.3 calls out by name.
func (r vlobRepo) AppendAtom(ctx context.Context, atom *domain.VlobAtom) error {
	maxVersion, err := r.MaxVersion(ctx, atom.OrganizationID, atom.VlobID)
	if err != nil {
		return err
	}
	if atom.Version != maxVersion+1 {
		return domain.ErrBadVersion
	}
	key := vlobAtomKey(atom.OrganizationID, atom.VlobID, atom.Version)
	return r.txn.Insert("vlob_atom", &vlobAtomRow{Key: key, VlobKey: atom.VlobID.String(), Data: atom})
}

func (r vlobRepo) MaxVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID) (int, error) {
	atoms, err := r.atoms(org, id)
	if err != nil {
		return 0, err
	}
	if len(atoms) == 0 {
		return 0, nil
	}
	return atoms[len(atoms)-1].Version, nil
}

func (r vlobRepo) ReadVersion(ctx context.Context, org domain.OrganizationID, id domain.VlobID, version int) (*domain.VlobAtom, error) {
	raw, err := r.txn.First("vlob_atom", "id", vlobAtomKey(org, id, version))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*vlobAtomRow).Data, nil
}

func (r vlobRepo) ReadAtTimestamp(ctx context.Context, org domain.OrganizationID, id domain.VlobID, at time.Time) (*domain.VlobAtom, error) {
	atoms, err := r.atoms(org, id)
	if err != nil {
		return nil, err
	}
	var latest *domain.VlobAtom
	for _, a := range atoms {
		if !a.Timestamp.After(at) {
			latest = a
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (r vlobRepo) ListVersions(ctx context.Context, org domain.OrganizationID, id domain.VlobID) ([]*domain.VlobAtom, error) {
	return r.atoms(org, id)
}

func (r vlobRepo) ListForReencryption(ctx context.Context, org domain.OrganizationID, realm domain.RealmID, oldRevision, size int) ([]*domain.VlobAtom, error) {
	it, err := r.txn.Get("vlob", "org", orgKey(org))
	if err != nil {
		return nil, err
	}
	var vlobIDs []domain.VlobID
	for raw := it.Next(); raw != nil; raw = it.Next() {
		v := raw.(*vlobRow).Data
		if v.RealmID == realm {
			vlobIDs = append(vlobIDs, v.VlobID)
		}
	}

	var out []*domain.VlobAtom
	for _, vlobID := range vlobIDs {
		atoms, err := r.atoms(org, vlobID)
		if err != nil {
			return nil, err
		}
		for _, a := range atoms {
			if a.EncryptionRevision == oldRevision {
				out = append(out, a)
				if len(out) >= size {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func (r vlobRepo) SaveReencryptedAtom(ctx context.Context, atom *domain.VlobAtom) error {
	key := vlobAtomKey(atom.OrganizationID, atom.VlobID, atom.Version)
	return r.txn.Insert("vlob_atom", &vlobAtomRow{Key: key, VlobKey: atom.VlobID.String(), Data: atom})
}
