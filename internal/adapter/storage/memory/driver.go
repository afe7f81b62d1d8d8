package memory

import (
	"context"

	"github.com/hashicorp/go-memdb"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/events"
)

// Driver is the single-process ports.Driver used by tests and by
// standalone deployments that don't need the relational driver's
// cross-process fanout (spec.md §4.9 design note).
type Driver struct {
	db  *memdb.MemDB
	bus *events.Bus
}

func New(log *zap.Logger) (*Driver, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Driver{db: db, bus: events.NewBus(log)}, nil
}

func (d *Driver) BeginTx(ctx context.Context) (ports.Tx, error) {
	txn := d.db.Txn(true)
	return &tx{txn: txn}, nil
}

func (d *Driver) Events() ports.EventBus { return d.bus }

func (d *Driver) Close() error { return nil }

// tx wraps one memdb write transaction. memdb transactions have no
// server round-trip to fail, so Commit/Rollback never return an error;
// the signature stays error-returning to match the relational driver.
type tx struct {
	txn *memdb.Txn
}

func (t *tx) Commit() error {
	t.txn.Commit()
	return nil
}

func (t *tx) Rollback() error {
	t.txn.Abort()
	return nil
}

func (t *tx) Organizations() ports.OrganizationRepo { return organizationRepo{t.txn} }
func (t *tx) Users() ports.UserRepo                 { return userRepo{t.txn} }
func (t *tx) Devices() ports.DeviceRepo             { return deviceRepo{t.txn} }
func (t *tx) Realms() ports.RealmRepo               { return realmRepo{t.txn} }
func (t *tx) Vlobs() ports.VlobRepo                 { return vlobRepo{t.txn} }
func (t *tx) Blocks() ports.BlockRepo               { return blockRepo{t.txn} }
func (t *tx) Messages() ports.MessageRepo           { return messageRepo{t.txn} }
