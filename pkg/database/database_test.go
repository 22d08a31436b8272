package database

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/config"
)

func TestMigrationsEmbedded(t *testing.T) {
	src, err := iofs.New(migrationFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	up, err := fs.ReadFile(migrationFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "auth_bindings", "auth_scope_sets", "auth_scope_items", "auth_default_scope_sets"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.True(t, strings.Contains(string(up), "(provider, external_account_id)"))
	assert.True(t, strings.Contains(string(up), "(provider, user_id)"))
}

func TestNewUniversalRedisClient_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RedisConfig
	}{
		{name: "no address", cfg: config.RedisConfig{Mode: "single"}},
		{name: "sentinel without master", cfg: config.RedisConfig{Mode: "sentinel", Addrs: []string{"127.0.0.1:26379"}}},
		{name: "unknown mode", cfg: config.RedisConfig{Mode: "ring", Addr: "127.0.0.1:6379"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewUniversalRedisClient(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{Mode: "single", Addrs: []string{"a:6379", "b:6379"}, MaxRetryBackoff: 250})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:6379"}, opts.Addrs)
	assert.Equal(t, 250*time.Millisecond, opts.MaxRetryBackoff)

	opts, err = redisOptions(config.RedisConfig{Mode: "sentinel", Addr: "s:26379", MasterName: "mymaster"})
	require.NoError(t, err)
	assert.Equal(t, "mymaster", opts.MasterName)

	opts, err = redisOptions(config.RedisConfig{Mode: "cluster", Addrs: []string{"c1:7000", "c2:7000"}})
	require.NoError(t, err)
	assert.Len(t, opts.Addrs, 2)
	assert.True(t, opts.RouteByLatency)
}
