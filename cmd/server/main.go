package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	transportfiber "github.com/seu-repo/parsec-backend/internal/adapter/transport/fiber"
	"github.com/seu-repo/parsec-backend/internal/adapter/blockstore/local"
	blockstores3 "github.com/seu-repo/parsec-backend/internal/adapter/blockstore/s3"
	"github.com/seu-repo/parsec-backend/internal/adapter/rootkey"
	"github.com/seu-repo/parsec-backend/internal/adapter/storage/memory"
	"github.com/seu-repo/parsec-backend/internal/adapter/storage/postgres"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/block"
	"github.com/seu-repo/parsec-backend/internal/service/bootstrap"
	"github.com/seu-repo/parsec-backend/internal/service/handshake"
	"github.com/seu-repo/parsec-backend/internal/service/identity"
	"github.com/seu-repo/parsec-backend/internal/service/message"
	"github.com/seu-repo/parsec-backend/internal/service/realm"
	"github.com/seu-repo/parsec-backend/internal/service/session"
	"github.com/seu-repo/parsec-backend/internal/service/trustchain"
	"github.com/seu-repo/parsec-backend/internal/service/vlob"
	"github.com/seu-repo/parsec-backend/pkg/config"
)

const serviceName = "parsec-backend"

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting parsec backend",
		zap.String("service", serviceName),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("blockstore_driver", cfg.Blockstore.Driver),
	)

	driver, closeDriver, err := buildDriver(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage driver", zap.Error(err))
	}
	defer closeDriver()

	blockstore, err := buildBlockstore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize blockstore", zap.Error(err))
	}

	rootKeyStore, err := rootkey.NewStore(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		logger.Fatal("failed to initialize vault root key store", zap.Error(err))
	}

	realmService := realm.NewService(driver, logger)
	vlobService := vlob.NewService(driver, cfg.TrustChain.Ballpark, logger)
	blockService := block.NewService(driver, blockstore, logger)
	messageService := message.NewService(driver, logger)
	identityService := identity.NewService(driver, logger)
	bootstrapService := bootstrap.NewService(driver, rootKeyStore, logger)
	handshakeService := handshake.NewService(driver, cfg.Handshake.Secret, cfg.Handshake.TokenTTL, logger)
	trustChainVerifier := trustchain.NewVerifier(driver, cfg.TrustChain.Ballpark, nil, logger)

	dispatcher := &session.Dispatcher{
		Realm:      realmService,
		Vlob:       vlobService,
		Block:      blockService,
		Message:    messageService,
		Identity:   identityService,
		TrustChain: trustChainVerifier,
		Events:     driver.Events(),
		Now:        time.Now,
		Log:        logger,
	}

	app := transportfiber.NewRouter(transportfiber.Config{
		AppName:    serviceName,
		CORS:       cfg.CORS,
		Dispatcher: dispatcher,
		Bootstrap:  bootstrapService,
		Identity:   identityService,
		TrustChain: trustChainVerifier,
		Handshake:  handshakeService,
		EventBus:   driver.Events(),
		Log:        logger,
	})

	go func() {
		logger.Info("starting http server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

// buildDriver selects the ports.Driver implementation per cfg.Storage.Driver
// (spec.md §4.9: the relational driver relays events across processes via
// LISTEN/NOTIFY, the in-memory driver is process-local).
func buildDriver(cfg *config.Config, logger *zap.Logger) (ports.Driver, func(), error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		d, err := memory.New(logger)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { d.Close() }, nil

	case "postgres":
		db, err := postgres.NewConnection(cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.AutoMigrate(db); err != nil {
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("unwrap sql.DB: %w", err)
		}
		bus, err := postgres.NewEventBus(cfg.Database.URL, sqlDB, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("start event bus: %w", err)
		}
		d := postgres.New(db, bus)
		return d, func() { d.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// buildBlockstore selects the ports.BlockStore implementation per
// cfg.Blockstore.Driver (spec.md §1's "local disk or object storage").
func buildBlockstore(cfg *config.Config) (ports.BlockStore, error) {
	switch cfg.Blockstore.Driver {
	case "", "local":
		return local.New(cfg.Blockstore.Local.BaseDir), nil

	case "s3":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Blockstore.S3.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Blockstore.S3.Endpoint != "" {
				o.BaseEndpoint = &cfg.Blockstore.S3.Endpoint
			}
		})
		return blockstores3.New(client, cfg.Blockstore.S3.Bucket), nil

	default:
		return nil, fmt.Errorf("unknown blockstore driver %q", cfg.Blockstore.Driver)
	}
}
