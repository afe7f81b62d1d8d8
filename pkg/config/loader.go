package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetDefault("app.name", "parsec-backend")
	viper.SetDefault("http.port", 6777)
	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("blockstore.driver", "local")
	viper.SetDefault("blockstore.local.base_dir", "./data/blocks")
	viper.SetDefault("handshake.token_ttl", 30*time.Minute)
	viper.SetDefault("trust_chain.ballpark", 30*time.Minute)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	viper.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("storage.driver", "STORAGE_DRIVER", "APP_STORAGE_DRIVER")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("blockstore.driver", "BLOCKSTORE_DRIVER", "APP_BLOCKSTORE_DRIVER")
	viper.BindEnv("blockstore.local.base_dir", "BLOCKSTORE_BASE_DIR")
	viper.BindEnv("blockstore.s3.bucket", "BLOCKSTORE_S3_BUCKET")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("handshake.secret", "HANDSHAKE_SECRET", "APP_HANDSHAKE_SECRET")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// logic for no config file (env vars only) could go here
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
