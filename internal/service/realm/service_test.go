package realm

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

func testLogger() *zap.Logger {
	l, _ := zap.NewDevelopment()
	return l
}

const org = domain.OrganizationID("acme")

func TestCreate_GrantsOwnerToCreator(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	owner := domain.DeviceID("alice@laptop")
	now := time.Now()

	if err := s.Create(context.Background(), org, realmID, owner, now); err != nil {
		t.Fatalf("create: %v", err)
	}

	roles, err := s.GetRoles(context.Background(), org, realmID)
	if err != nil {
		t.Fatalf("get roles: %v", err)
	}
	if roles["alice"] != domain.RoleOwner {
		t.Errorf("expected alice to be OWNER, got %v", roles["alice"])
	}
}

func TestCreate_DuplicateRejected(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	now := time.Now()

	if err := s.Create(context.Background(), org, realmID, "alice@laptop", now); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Create(context.Background(), org, realmID, "alice@laptop", now)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUpdateRole_DemotingLastOwnerRejected(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	now := time.Now()
	s.Create(context.Background(), org, realmID, "alice@laptop", now)

	reader := domain.RoleReader
	err := s.UpdateRole(context.Background(), org, realmID, "alice", &reader, "alice@laptop", nil, now)
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed demoting last owner, got %v", err)
	}
}

func TestUpdateRole_NonManagerRejected(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	now := time.Now()
	s.Create(context.Background(), org, realmID, "alice@laptop", now)

	reader := domain.RoleReader
	if err := s.UpdateRole(context.Background(), org, realmID, "bob", &reader, "alice@laptop", nil, now); err != nil {
		t.Fatalf("grant reader to bob: %v", err)
	}

	contributor := domain.RoleContributor
	err := s.UpdateRole(context.Background(), org, realmID, "carol", &contributor, "bob@phone", nil, now)
	if !errors.Is(err, domain.ErrNotAllowed) {
		t.Errorf("expected ErrNotAllowed for reader granting roles, got %v", err)
	}
}

func TestUpdateRole_PublishesEvent(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	now := time.Now()
	s.Create(context.Background(), org, realmID, "alice@laptop", now)

	contributor := domain.RoleContributor
	if err := s.UpdateRole(context.Background(), org, realmID, "bob", &contributor, "alice@laptop", []byte("cert"), now); err != nil {
		t.Fatalf("update role: %v", err)
	}

	if len(d.events.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(d.events.published))
	}
	ev := d.events.published[0]
	if ev.Author != "alice@laptop" || ev.RealmID != realmID {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestMaintenanceLifecycle(t *testing.T) {
	d := newFakeDriver()
	s := NewService(d, testLogger())
	realmID := domain.NewRealmID()
	now := time.Now()
	s.Create(context.Background(), org, realmID, "alice@laptop", now)

	if err := s.StartMaintenance(context.Background(), org, realmID, domain.MaintenanceReencryption, "alice@laptop", 2, now); err != nil {
		t.Fatalf("start maintenance: %v", err)
	}

	status, err := s.Status(context.Background(), org, realmID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Status.InMaintenance || status.EncryptionRevision != 2 {
		t.Fatalf("expected in maintenance at revision 2, got %+v", status)
	}

	err = s.StartMaintenance(context.Background(), org, realmID, domain.MaintenanceReencryption, "alice@laptop", 3, now)
	if !errors.Is(err, domain.ErrInMaintenance) {
		t.Errorf("expected ErrInMaintenance for double-start, got %v", err)
	}

	if err := s.FinishMaintenance(context.Background(), org, realmID, "alice@laptop", now); err != nil {
		t.Fatalf("finish maintenance: %v", err)
	}

	status, _ = s.Status(context.Background(), org, realmID)
	if status.Status.InMaintenance {
		t.Error("expected maintenance to be finished")
	}

	err = s.FinishMaintenance(context.Background(), org, realmID, "alice@laptop", now)
	if !errors.Is(err, domain.ErrMaintenanceError) {
		t.Errorf("expected ErrMaintenanceError finishing twice, got %v", err)
	}
}
