package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/hashicorp/go-memdb"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

type realmRepo struct{ txn *memdb.Txn }

func (r realmRepo) Create(ctx context.Context, realm *domain.Realm) error {
	key := scopedKey(realm.OrganizationID, realm.RealmID.String())
	if existing, _ := r.txn.First("realm", "id", key); existing != nil {
		return domain.ErrAlreadyExists
	}
	return r.txn.Insert("realm", &realmRow{Key: key, Org: orgKey(realm.OrganizationID), Data: realm})
}

func (r realmRepo) Get(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (*domain.Realm, error) {
	raw, err := r.txn.First("realm", "id", scopedKey(org, id.String()))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrNotFound
	}
	return raw.(*realmRow).Data, nil
}

func (r realmRepo) put(org domain.OrganizationID, realm *domain.Realm) error {
	return r.txn.Insert("realm", &realmRow{Key: scopedKey(org, realm.RealmID.String()), Org: orgKey(org), Data: realm})
}

func (r realmRepo) UpdateStatus(ctx context.Context, org domain.OrganizationID, id domain.RealmID, status domain.RealmStatus) error {
	realm, err := r.Get(ctx, org, id)
	if err != nil {
		return err
	}
	updated := *realm
	updated.Status = status
	return r.put(org, &updated)
}

func (r realmRepo) IncrementCheckpoint(ctx context.Context, org domain.OrganizationID, id domain.RealmID) (int, error) {
	realm, err := r.Get(ctx, org, id)
	if err != nil {
		return 0, err
	}
	updated := *realm
	updated.Checkpoint++
	if err := r.put(org, &updated); err != nil {
		return 0, err
	}
	return updated.Checkpoint, nil
}

func (r realmRepo) SetEncryptionRevision(ctx context.Context, org domain.OrganizationID, id domain.RealmID, rev int) error {
	realm, err := r.Get(ctx, org, id)
	if err != nil {
		return err
	}
	updated := *realm
	updated.EncryptionRevision = rev
	return r.put(org, &updated)
}

func (r realmRepo) Count(ctx context.Context, org domain.OrganizationID) (int, error) {
	it, err := r.txn.Get("realm", "org", orgKey(org))
	if err != nil {
		return 0, err
	}
	count := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		count++
	}
	return count, nil
}

func (r realmRepo) RoleLog(ctx context.Context, org domain.OrganizationID, id domain.RealmID) ([]*domain.RoleCertificate, error) {
	it, err := r.txn.Get("realm_role", "realm", id.String())
	if err != nil {
		return nil, err
	}
	var out []*domain.RoleCertificate
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*realmRoleRow).Data)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
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
	key := cert.RealmID.String() + "|" + strconv.Itoa(cert.Seq)
	return r.txn.Insert("realm_role", &realmRoleRow{Key: key, RealmKey: cert.RealmID.String(), Data: cert})
}

func (r realmRepo) AppendChangeLogEntry(ctx context.Context, entry *domain.RealmVlobUpdate) error {
	key := changeLogKey(entry.OrganizationID, entry.RealmID, entry.Checkpoint)
	return r.txn.Insert("realm_vlob_update", &realmVlobUpdateRow{
		Key:      key,
		RealmKey: realmScopedKeyPrefix(entry.OrganizationID, entry.RealmID),
		Data:     entry,
	})
}

func (r realmRepo) ChangesSince(ctx context.Context, org domain.OrganizationID, id domain.RealmID, checkpoint int) ([]*domain.RealmVlobUpdate, error) {
	it, err := r.txn.Get("realm_vlob_update", "realm", realmScopedKeyPrefix(org, id))
	if err != nil {
		return nil, err
	}
	var out []*domain.RealmVlobUpdate
	for raw := it.Next(); raw != nil; raw = it.Next() {
		entry := raw.(*realmVlobUpdateRow).Data
		if entry.Checkpoint > checkpoint {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Checkpoint < out[j].Checkpoint })
	return out, nil
}

// realmScopedKeyPrefix is the secondary-index value shared by every
// change-log row scoped to one realm. RoleCertificate carries no
// OrganizationID of its own (RealmID, a UUID, is the only scoping key
// its append-only log needs), so only change-log entries use this.
func realmScopedKeyPrefix(org domain.OrganizationID, id domain.RealmID) string {
	return string(org) + "|" + id.String()
}
