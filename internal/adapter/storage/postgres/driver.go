package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/parsec-backend/internal/ports"
)

type Driver struct {
	db  *gorm.DB
	bus *EventBus
}

func New(db *gorm.DB, bus *EventBus) *Driver {
	return &Driver{db: db, bus: bus}
}

func (d *Driver) BeginTx(ctx context.Context) (ports.Tx, error) {
	gtx := d.db.WithContext(ctx).Begin()
	if gtx.Error != nil {
		return nil, gtx.Error
	}
	return &tx{db: gtx}, nil
}

func (d *Driver) Events() ports.EventBus { return d.bus }

func (d *Driver) Close() error {
	if err := Close(d.db); err != nil {
		return err
	}
	return d.bus.Close()
}

type tx struct{ db *gorm.DB }

func (t *tx) Commit() error   { return t.db.Commit().Error }
func (t *tx) Rollback() error { return t.db.Rollback().Error }

func (t *tx) Organizations() ports.OrganizationRepo { return organizationRepo{t.db} }
func (t *tx) Users() ports.UserRepo                 { return userRepo{t.db} }
func (t *tx) Devices() ports.DeviceRepo             { return deviceRepo{t.db} }
func (t *tx) Realms() ports.RealmRepo               { return realmRepo{t.db} }
func (t *tx) Vlobs() ports.VlobRepo                 { return vlobRepo{t.db} }
func (t *tx) Blocks() ports.BlockRepo               { return blockRepo{t.db} }
func (t *tx) Messages() ports.MessageRepo           { return messageRepo{t.db} }
