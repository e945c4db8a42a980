package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want Store
	}{
		{"memory", config.StorageConfig{Driver: "memory"}, &MemoryStore{}},
		{"none", config.StorageConfig{Driver: "none"}, NopStore{}},
		{"sqlite", config.StorageConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "open.db")}, &SQLStore{}},
		{"redis", config.StorageConfig{Driver: "redis", Redis: config.RedisConfig{Addr: mr.Addr(), Prefix: "sf:"}}, &RedisStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(context.Background(), tt.cfg, zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })

			assert.IsType(t, tt.want, store)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "floppy"}, zap.NewNop())

	assert.Error(t, err)
}

func TestOpen_CacheInFrontOfSQLite(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "cached.db"),
		Redis:      config.RedisConfig{Addr: mr.Addr(), Prefix: "sf:"},
		Cache:      config.CacheConfig{Enabled: true, TTL: time.Minute},
	}

	store, err := Open(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.IsType(t, &CachedStore{}, store)

	require.NoError(t, store.Set(ctx, KeyCart, []byte(`[]`)))
	got, err := store.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.True(t, mr.Exists("sf:cache:cart"))
}

func TestOpen_CacheUnreachable(t *testing.T) {
	cfg := config.StorageConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "nocache.db"),
		Redis:      config.RedisConfig{Addr: "127.0.0.1:1"},
		Cache:      config.CacheConfig{Enabled: true},
	}

	_, err := Open(context.Background(), cfg, zap.NewNop())

	assert.Error(t, err)
}
