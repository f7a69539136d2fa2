package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the process-wide configuration, loaded from an optional YAML
// file and then overlaid with environment variables, following the
// teacher's two-stage Load pattern.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Debug    DebugConfig    `yaml:"debug"`
	Database DatabaseConfig `yaml:"database"`
	Firehose FirehoseConfig `yaml:"firehose"`
	API      APIConfig      `yaml:"api"`
	Redis    RedisConfig    `yaml:"redis"`
}

type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"DEBUG_PORT"`
}

// DatabaseConfig holds the Postgres connection settings used by the
// persistence layer (C4/C5/C6/C7).
type DatabaseConfig struct {
	URL      string `yaml:"url" envconfig:"DATABASE_URL"`
	MaxConns int32  `yaml:"maxConnections" envconfig:"DATABASE_MAX_CONNECTIONS"`
}

// FirehoseConfig holds the upstream block-source settings for the
// ingestion controller (C9).
type FirehoseConfig struct {
	Endpoint         string   `yaml:"endpoint" envconfig:"FIREHOSE_ENDPOINT"`
	FromSlot         uint64   `yaml:"fromSlot" envconfig:"FIREHOSE_FROM_SLOT"`
	MintWhitelist    []string `yaml:"mintWhitelist" envconfig:"FIREHOSE_MINT_WHITELIST"`
	InitialBackoffMs int      `yaml:"initialBackoffMs" envconfig:"FIREHOSE_INITIAL_BACKOFF_MS"`
	MaxBackoffMs     int      `yaml:"maxBackoffMs" envconfig:"FIREHOSE_MAX_BACKOFF_MS"`
}

// APIConfig holds the notification/WS API bind address.
type APIConfig struct {
	ListenAddress string `yaml:"listenAddress" envconfig:"API_LISTEN_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"API_PORT"`
}

// RedisConfig holds the optional trade-stream mirror settings. Empty URL
// disables the mirror.
type RedisConfig struct {
	URL          string `yaml:"url" envconfig:"REDIS_URL"`
	KeyPrefix    string `yaml:"keyPrefix" envconfig:"REDIS_KEY_PREFIX"`
	MaxStreamLen int64  `yaml:"maxStreamLen" envconfig:"REDIS_MAX_STREAM_LEN"`
}

// Singleton config instance with default values.
var globalConfig = &Config{
	Logging: LoggingConfig{
		Level: "info",
	},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Database: DatabaseConfig{
		MaxConns: 10,
	},
	Firehose: FirehoseConfig{
		InitialBackoffMs: 1000,
		MaxBackoffMs:     30_000,
	},
	API: APIConfig{
		ListenAddress: "0.0.0.0",
		ListenPort:    8080,
	},
	Redis: RedisConfig{
		KeyPrefix: "solidx:",
	},
}

// Load reads configFile as YAML (if non-empty) into the global config, then
// overlays environment variables.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	// "dummy" prefix mirrors the teacher's trick to avoid picking up
	// unrelated env vars that happen to match field names.
	if err := envconfig.Process("dummy", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	if globalConfig.Database.URL == "" {
		return nil, fmt.Errorf("database.url (or DATABASE_URL) is required")
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance.
func GetConfig() *Config {
	return globalConfig
}
