// Package config loads the cartsync configuration file.
//
// The file is YAML (or JSON, by extension). It is parsed into a generic map
// first and then decoded onto the defaults, so a file only needs the keys it
// changes.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/cartsync/internal/logging"
	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "cartsync.yaml"

// EncryptionKeyEnv overrides identity.encryption_key.
const EncryptionKeyEnv = "CARTSYNC_ENCRYPTION_KEY"

// Identity medium types.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StoreDynamoDB = "dynamodb"
)

// Config is the root configuration.
type Config struct {
	Identity IdentityConfig `mapstructure:"identity"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Sandbox  SandboxConfig  `mapstructure:"sandbox"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// IdentityConfig selects and configures the identity medium.
type IdentityConfig struct {
	Key           string         `mapstructure:"key"`
	Store         string         `mapstructure:"store"`
	Namespace     string         `mapstructure:"namespace"`
	EncryptionKey string         `mapstructure:"encryption_key"`
	File          FileConfig     `mapstructure:"file"`
	Redis         RedisConfig    `mapstructure:"redis"`
	DynamoDB      DynamoDBConfig `mapstructure:"dynamodb"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type DynamoDBConfig struct {
	Table    string        `mapstructure:"table"`
	Region   string        `mapstructure:"region"`
	Endpoint string        `mapstructure:"endpoint"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// SyncConfig tunes the synchronizer.
type SyncConfig struct {
	LockMode            string        `mapstructure:"lock_mode"`
	CallTimeout         time.Duration `mapstructure:"call_timeout"`
	ReconcileOnMutation bool          `mapstructure:"reconcile_on_mutation"`
}

// SandboxConfig configures the in-memory storefront backend.
type SandboxConfig struct {
	Catalog string `mapstructure:"catalog"`
	BaseURL string `mapstructure:"base_url"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Identity: IdentityConfig{
			Key:   domain.DefaultIdentityKey,
			Store: StoreFile,
			File:  FileConfig{Path: filepath.Join(".cartsync", "storage.json")},
			Redis: RedisConfig{Addr: "localhost:6379", Prefix: "cartsync:"},
			DynamoDB: DynamoDBConfig{
				Table:  "cartsync",
				Prefix: "cartsync#",
			},
		},
		Sync: SyncConfig{
			LockMode: string(domain.LockQueue),
		},
		Sandbox: SandboxConfig{
			Catalog: "catalog.yaml",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults. The EncryptionKeyEnv variable wins over the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, err
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if key := os.Getenv(EncryptionKeyEnv); key != "" {
		cfg.Identity.EncryptionKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks enumerations and the encryption key.
func (c Config) Validate() error {
	switch c.Identity.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreDynamoDB:
	default:
		return fmt.Errorf("unknown identity store %q", c.Identity.Store)
	}
	if c.Identity.Key == "" {
		return fmt.Errorf("identity key cannot be empty")
	}
	if c.Identity.Store == StoreDynamoDB && c.Identity.DynamoDB.Table == "" {
		return fmt.Errorf("dynamodb table is required")
	}
	if _, err := c.LockMode(); err != nil {
		return err
	}
	if _, err := c.EncryptionKey(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Sync.CallTimeout < 0 {
		return fmt.Errorf("call_timeout cannot be negative")
	}
	return nil
}

// LockMode parses sync.lock_mode.
func (c Config) LockMode() (domain.LockMode, error) {
	return domain.ParseLockMode(c.Sync.LockMode)
}

// EncryptionKey decodes identity.encryption_key. Nil means encryption is off.
func (c Config) EncryptionKey() ([]byte, error) {
	if c.Identity.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Identity.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption_key must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}
