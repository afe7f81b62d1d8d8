package memory

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

const testOrg = domain.OrganizationID("acme")

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := New(zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestOrganizationBootstrapRoundTrip(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	tx, _ := d.BeginTx(ctx)
	if err := tx.Organizations().Create(ctx, &domain.Organization{ID: testOrg}); err != nil {
		t.Fatalf("create org: %v", err)
	}
	if err := tx.Organizations().CreateBootstrapToken(ctx, &domain.BootstrapToken{
		OrganizationID: testOrg, Token: "tok", ExpiresOn: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create token: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, _ = d.BeginTx(ctx)
	if _, err := tx.Organizations().ConsumeBootstrapToken(ctx, testOrg, "tok"); err != nil {
		t.Fatalf("consume token: %v", err)
	}
	if err := tx.Organizations().MarkBootstrapped(ctx, testOrg, []byte("verifykey")); err != nil {
		t.Fatalf("mark bootstrapped: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, _ = d.BeginTx(ctx)
	if _, err := tx.Organizations().ConsumeBootstrapToken(ctx, testOrg, "tok"); err == nil {
		t.Error("expected second consume to fail")
	}

	org, err := tx.Organizations().Get(ctx, testOrg)
	if err != nil {
		t.Fatalf("get org: %v", err)
	}
	if !org.BootstrapDone {
		t.Error("expected org to be marked bootstrapped")
	}
}

func TestUserDeviceRealmVlobBlockMessageRoundTrip(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()
	now := time.Now()

	tx, _ := d.BeginTx(ctx)
	if err := tx.Organizations().Create(ctx, &domain.Organization{ID: testOrg}); err != nil {
		t.Fatalf("create org: %v", err)
	}
	if err := tx.Users().Create(ctx, &domain.User{OrganizationID: testOrg, UserID: "alice", CreatedOn: now}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := tx.Devices().Create(ctx, &domain.Device{OrganizationID: testOrg, DeviceID: "alice@laptop", CreatedOn: now}); err != nil {
		t.Fatalf("create device: %v", err)
	}

	realmID := domain.NewRealmID()
	if err := tx.Realms().Create(ctx, &domain.Realm{OrganizationID: testOrg, RealmID: realmID, EncryptionRevision: 1, CreatedOn: now}); err != nil {
		t.Fatalf("create realm: %v", err)
	}
	ownerRole := domain.RoleOwner
	if err := tx.Realms().AppendRoleCertificate(ctx, &domain.RoleCertificate{
		RealmID: realmID, Seq: 1, UserID: "alice", Role: &ownerRole, GrantedBy: "alice@laptop", GrantedOn: now,
	}); err != nil {
		t.Fatalf("append role cert: %v", err)
	}

	roles, err := tx.Realms().CurrentRoles(ctx, testOrg, realmID)
	if err != nil || roles["alice"] != domain.RoleOwner {
		t.Fatalf("expected alice to be owner, got %+v err=%v", roles, err)
	}

	vlobID := domain.NewVlobID()
	if err := tx.Vlobs().Create(ctx, &domain.Vlob{OrganizationID: testOrg, VlobID: vlobID, RealmID: realmID, CreatedOn: now},
		&domain.VlobAtom{OrganizationID: testOrg, VlobID: vlobID, Version: 1, Blob: []byte("v1"), Author: "alice@laptop", Timestamp: now, EncryptionRevision: 1}); err != nil {
		t.Fatalf("create vlob: %v", err)
	}
	if err := tx.Vlobs().AppendAtom(ctx, &domain.VlobAtom{OrganizationID: testOrg, VlobID: vlobID, Version: 2, Blob: []byte("v2"), Author: "alice@laptop", Timestamp: now.Add(time.Second), EncryptionRevision: 1}); err != nil {
		t.Fatalf("append atom: %v", err)
	}
	if err := tx.Vlobs().AppendAtom(ctx, &domain.VlobAtom{OrganizationID: testOrg, VlobID: vlobID, Version: 4, Blob: []byte("bad"), Author: "alice@laptop", Timestamp: now}); err == nil {
		t.Error("expected version-gap append to fail")
	}

	checkpoint, err := tx.Realms().IncrementCheckpoint(ctx, testOrg, realmID)
	if err != nil || checkpoint != 1 {
		t.Fatalf("increment checkpoint: got %d err=%v", checkpoint, err)
	}
	if err := tx.Realms().AppendChangeLogEntry(ctx, &domain.RealmVlobUpdate{OrganizationID: testOrg, RealmID: realmID, Checkpoint: checkpoint, VlobID: vlobID, Version: 2}); err != nil {
		t.Fatalf("append change log: %v", err)
	}
	changes, err := tx.Realms().ChangesSince(ctx, testOrg, realmID, 0)
	if err != nil || len(changes) != 1 || changes[0].Version != 2 {
		t.Fatalf("unexpected changes: %+v err=%v", changes, err)
	}

	versions, err := tx.Vlobs().ListVersions(ctx, testOrg, vlobID)
	if err != nil || len(versions) != 2 || versions[0].Version != 1 || versions[1].Version != 2 {
		t.Fatalf("unexpected versions: %+v err=%v", versions, err)
	}

	blockID := domain.NewBlockID()
	if err := tx.Blocks().CreateMeta(ctx, &domain.Block{OrganizationID: testOrg, BlockID: blockID, RealmID: realmID, Author: "alice@laptop", Size: 4, CreatedOn: now}); err != nil {
		t.Fatalf("create block meta: %v", err)
	}
	meta, err := tx.Blocks().GetMeta(ctx, testOrg, blockID)
	if err != nil || meta.Size != 4 {
		t.Fatalf("unexpected block meta: %+v err=%v", meta, err)
	}

	idx, err := tx.Messages().Append(ctx, &domain.Message{OrganizationID: testOrg, Recipient: "alice", Sender: "alice@laptop", Timestamp: now, Body: []byte("hi")})
	if err != nil || idx != 1 {
		t.Fatalf("append message: idx=%d err=%v", idx, err)
	}
	idx2, err := tx.Messages().Append(ctx, &domain.Message{OrganizationID: testOrg, Recipient: "alice", Sender: "alice@laptop", Timestamp: now, Body: []byte("hi again")})
	if err != nil || idx2 != 2 {
		t.Fatalf("append second message: idx=%d err=%v", idx2, err)
	}
	msgs, err := tx.Messages().Since(ctx, testOrg, "alice", 1)
	if err != nil || len(msgs) != 1 || msgs[0].Index != 2 {
		t.Fatalf("unexpected since results: %+v err=%v", msgs, err)
	}

	total, active, err := tx.Users().Count(ctx, testOrg)
	if err != nil || total != 1 || active != 1 {
		t.Fatalf("unexpected user count: total=%d active=%d err=%v", total, active, err)
	}
	deviceCount, err := tx.Devices().Count(ctx, testOrg)
	if err != nil || deviceCount != 1 {
		t.Fatalf("unexpected device count: %d err=%v", deviceCount, err)
	}
	realmCount, err := tx.Realms().Count(ctx, testOrg)
	if err != nil || realmCount != 1 {
		t.Fatalf("unexpected realm count: %d err=%v", realmCount, err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	tx, _ := d.BeginTx(ctx)
	if err := tx.Organizations().Create(ctx, &domain.Organization{ID: testOrg}); err != nil {
		t.Fatalf("create org: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	tx, _ = d.BeginTx(ctx)
	if _, err := tx.Organizations().Get(ctx, testOrg); err != domain.ErrNotFound {
		t.Errorf("expected org to be absent after rollback, got err=%v", err)
	}
}
