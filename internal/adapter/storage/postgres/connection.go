// Package postgres implements ports.Driver over gorm + lib/pq, the
// multi-process storage driver spec.md §4.7/§4.9 contrasts with the
// single-process internal/adapter/storage/memory driver: writes commit
// through Postgres itself, and committed events fan out to every other
// connected process via LISTEN/NOTIFY.
package postgres

import (
	"fmt"

	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/seu-repo/parsec-backend/internal/domain"
)

// NewConnection opens the pooled gorm connection used for transactional
// reads and writes.
func NewConnection(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres: unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to postgres storage driver")
	return db, nil
}

// AutoMigrate creates/updates the tables backing every domain row. Called
// once at startup by cmd/server when database.auto_migrate is set; spec.md carries no migration-file convention of its
// own, and the domain structs already declare their gorm tags for this.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Organization{}, &domain.BootstrapToken{},
		&domain.User{}, &domain.UserInvitation{},
		&domain.Device{}, &domain.DeviceInvitation{},
		&domain.Realm{}, &domain.RoleCertificate{}, &domain.RealmVlobUpdate{},
		&domain.Vlob{}, &domain.VlobAtom{},
		&domain.Block{},
		&domain.Message{},
	)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
