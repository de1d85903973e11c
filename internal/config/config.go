// Package config loads server and CLI settings from defaults, an optional
// YAML file, a .env file, CHARFORGE_* environment variables and flags, in
// increasing order of precedence.
package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

// EnvPrefix prefixes every environment variable, e.g. CHARFORGE_REDIS_ADDR.
const EnvPrefix = "CHARFORGE"

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ServerConfig holds gRPC listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// Addr is where CLI commands dial the server.
	Addr string `mapstructure:"addr"`
}

// LogConfig holds slog settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// StoreConfig selects the character store.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// RedisConfig holds the Redis connection used by the redis backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	PoolSize int    `mapstructure:"pool_size"`
}

// SQLiteConfig holds the database file used by the sqlite backend.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig points at an alternative catalog file. Empty uses the
// embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// PortraitConfig configures the text-to-image endpoint. An empty endpoint
// disables portrait generation.
type PortraitConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SRDConfig configures the SRD API used by srd-check.
type SRDConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// OTelConfig enables tracing when Endpoint is set.
type OTelConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Portrait PortraitConfig `mapstructure:"portrait"`
	SRD      SRDConfig      `mapstructure:"srd"`
	OTel     OTelConfig     `mapstructure:"otel"`
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRange("server.port", c.Server.Port, 1, 65535, vb)
	if c.Server.ShutdownTimeout <= 0 {
		vb.Field("server.shutdown_timeout", "must be positive")
	}
	errors.ValidateEnum("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("log.format", c.Log.Format, []string{"text", "json"}, vb)
	errors.ValidateEnum("store.backend", c.Store.Backend, []string{BackendMemory, BackendRedis, BackendSQLite}, vb)

	switch c.Store.Backend {
	case BackendRedis:
		errors.ValidateRequired("redis.addr", c.Redis.Addr, vb)
		if c.Redis.PoolSize < 1 {
			vb.Field("redis.pool_size", "must be at least 1")
		}
	case BackendSQLite:
		errors.ValidateRequired("sqlite.path", c.SQLite.Path, vb)
	}

	if c.Portrait.Timeout < 0 {
		vb.Field("portrait.timeout", "must not be negative")
	}
	if c.OTel.Endpoint != "" {
		errors.ValidateRequired("otel.service_name", c.OTel.ServiceName, vb)
	}

	return vb.Build()
}

// New returns a viper instance with defaults and environment binding
// installed.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the optional YAML file at path, applies the environment and
// any bound flags, and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = New()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to load %s", p)
		}
	}
	return nil
}

// BindFlags binds config keys to persistent or local flags of cmd, keyed by
// config key with the flag name as value. Unknown flag names are an error.
func BindFlags(v *viper.Viper, cmd *cobra.Command, flags map[string]string) error {
	for key, name := range flags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			return errors.Internalf("no flag %q to bind to %s", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.addr", "localhost:50051")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.backend", BackendMemory)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("sqlite.path", "charforge.db")

	v.SetDefault("catalog.path", "")

	v.SetDefault("portrait.endpoint", "")
	v.SetDefault("portrait.token", "")
	v.SetDefault("portrait.model", "")
	v.SetDefault("portrait.timeout", "60s")

	v.SetDefault("srd.base_url", "")

	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service_name", "charforge")
	v.SetDefault("otel.insecure", false)
}
