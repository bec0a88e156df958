package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "HOTEL"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.cors_allowed_origins":     []string{"*"},
	"server.rate_limit_rps":           10.0,
	"server.rate_limit_burst":         20,
	"server.shutdown_timeout_seconds": 15,

	"database.driver":                    "postgres",
	"database.url":                       "",
	"database.max_open_conns":            25,
	"database.max_idle_conns":            25,
	"database.conn_max_lifetime_minutes": 5,

	"auth.jwt_secret":                     "",
	"auth.issuer":                         "hotel-listing-api",
	"auth.token_lifetime_minutes":         15,
	"auth.refresh_token_lifetime_minutes": 60 * 24 * 7,
	"auth.clock_skew_seconds":             30,
	"auth.password_hasher":                "bcrypt",
	"auth.bcrypt_cost":                    10,
	"auth.refresh_store":                  "sql",
	"auth.purge_schedule":                 "@hourly",

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,
}

// Load configuration from environment variables and an optional config.yaml
// in the working directory. Environment variables take precedence over
// values from config files.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for config.yaml and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Auth.RefreshStore == "redis" && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("config validation failed: redis.addr is required when auth.refresh_store is redis")
	}
	if cfg.Database.MaxOpenConns > 0 && cfg.Database.MaxIdleConns > cfg.Database.MaxOpenConns {
		return errors.New("config validation failed: database.max_idle_conns exceeds database.max_open_conns")
	}
	return nil
}
