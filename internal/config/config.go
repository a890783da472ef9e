package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// ConfigPathEnvVar overrides the optional YAML config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config captures all runtime configuration. Values are layered as
// defaults, then the optional YAML file, then environment variables, where
// each key is the lower-cased variable name (DB_URL -> db_url).
type Config struct {
	Backend   string `koanf:"backend"`
	Port      string `koanf:"port"`
	AuthToken string `koanf:"auth_token"`

	ReadTimeoutSecs  int `koanf:"server_read_timeout"`
	WriteTimeoutSecs int `koanf:"server_write_timeout"`
	IdleTimeoutSecs  int `koanf:"server_idle_timeout"`

	DBURL             string `koanf:"db_url"`
	DBMaxConns        int    `koanf:"db_max_conns"`
	DBMinConns        int    `koanf:"db_min_conns"`
	DBMaxIdleSecs     int    `koanf:"db_max_conn_idle_secs"`
	DBMaxLifeSecs     int    `koanf:"db_max_conn_lifetime_secs"`
	DBConnTimeoutSecs int    `koanf:"db_conn_timeout_secs"`
	DBStatementCache  int    `koanf:"db_statement_cache_capacity"`
	DBMigrate         bool   `koanf:"db_migrate"`

	BadgerDir      string `koanf:"badger_dir"`
	BadgerInMemory bool   `koanf:"badger_in_memory"`

	NotifyWebhookURL    string `koanf:"notify_webhook_url"`
	NotifyWebhookAPIKey string `koanf:"notify_webhook_api_key"`
	NotifyTimeoutSecs   int    `koanf:"notify_timeout_secs"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	SeedDefaults bool `koanf:"seed_defaults"`
}

func defaultConfig() Config {
	return Config{
		Backend:           BackendPostgres,
		Port:              "8080",
		ReadTimeoutSecs:   15,
		WriteTimeoutSecs:  15,
		IdleTimeoutSecs:   60,
		DBMaxConns:        20,
		DBMinConns:        2,
		DBMaxIdleSecs:     300,
		DBMaxLifeSecs:     3600,
		DBConnTimeoutSecs: 10,
		DBStatementCache:  256,
		DBMigrate:         true,
		NotifyTimeoutSecs: 5,
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, applying validation.
func Load() (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and bounds for the selected backend.
func (cfg Config) Validate() error {
	if cfg.AuthToken == "" {
		return fmt.Errorf("AUTH_TOKEN is required")
	}

	switch cfg.Backend {
	case BackendPostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required for the postgres backend")
		}
		if cfg.DBMaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be positive")
		}
		if cfg.DBMinConns < 0 {
			return fmt.Errorf("DB_MIN_CONNS must be non-negative")
		}
		if cfg.DBMinConns > cfg.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
		}
		if cfg.DBStatementCache < 0 {
			return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
		}
	case BackendBadger:
		if cfg.BadgerDir == "" && !cfg.BadgerInMemory {
			return fmt.Errorf("BADGER_DIR is required unless BADGER_IN_MEMORY is set")
		}
	default:
		return fmt.Errorf("BACKEND must be %q or %q, got %q", BackendPostgres, BackendBadger, cfg.Backend)
	}

	if cfg.NotifyWebhookURL != "" && cfg.NotifyTimeoutSecs <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT_SECS must be positive")
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
