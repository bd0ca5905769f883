package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cartsync/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, StoreFile, cfg.Identity.Store)
	assert.Equal(t, domain.DefaultIdentityKey, cfg.Identity.Key)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "cartsync.yaml", `
identity:
  store: redis
  redis:
    addr: "redis:6379"
    db: "2"
    ttl: 72h
sync:
  lock_mode: flag
  call_timeout: 1500ms
  reconcile_on_mutation: true
server:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreRedis, cfg.Identity.Store)
	assert.Equal(t, "redis:6379", cfg.Identity.Redis.Addr)
	assert.Equal(t, 2, cfg.Identity.Redis.DB, "weakly typed")
	assert.Equal(t, 72*time.Hour, cfg.Identity.Redis.TTL)
	assert.Equal(t, "cartsync:", cfg.Identity.Redis.Prefix, "untouched default")
	assert.Equal(t, 1500*time.Millisecond, cfg.Sync.CallTimeout)
	assert.True(t, cfg.Sync.ReconcileOnMutation)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, domain.DefaultIdentityKey, cfg.Identity.Key)

	mode, err := cfg.LockMode()
	require.NoError(t, err)
	assert.Equal(t, domain.LockFlag, mode)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "cartsync.json", `{"identity": {"store": "dynamodb", "dynamodb": {"table": "carts", "region": "us-east-1"}}, "log": {"level": "debug"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreDynamoDB, cfg.Identity.Store)
	assert.Equal(t, "carts", cfg.Identity.DynamoDB.Table)
	assert.Equal(t, "us-east-1", cfg.Identity.DynamoDB.Region)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "identity:\n  stroe: memory\n",
		"unknown store":  "identity:\n  store: sqlite\n",
		"bad lock mode":  "sync:\n  lock_mode: mutex\n",
		"bad level":      "log:\n  level: loud\n",
		"bad duration":   "sync:\n  call_timeout: soon\n",
		"short key":      "identity:\n  encryption_key: abcd\n",
		"non hex key":    "identity:\n  encryption_key: zz\n",
		"negative":       "sync:\n  call_timeout: -1s\n",
		"broken yaml":    "identity: [\n",
		"empty identity": "identity:\n  key: \"\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "cartsync.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestEncryptionKey(t *testing.T) {
	cfg := Default()
	key, err := cfg.EncryptionKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.Identity.EncryptionKey = strings.Repeat("ab", 32)
	key, err = cfg.EncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestLoad_EncryptionKeyFromEnv(t *testing.T) {
	t.Setenv(EncryptionKeyEnv, strings.Repeat("01", 32))

	cfg, err := Load("")
	require.NoError(t, err)
	key, err := cfg.EncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
