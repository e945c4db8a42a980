package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedStore reads through a cache store in front of a primary store.
// Writes go to the primary first and then invalidate the cached copy. Cache failures are logged
// and never fail the call.
type CachedStore struct {
	primary Store
	cache   Store
	logger  *zap.Logger
	sfg     singleflight.Group // coalesces concurrent misses for the same key

	mu       sync.Mutex
	versions map[string]uint64 // bumped by every write, before its invalidation
}

func NewCachedStore(primary, cache Store, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		primary:  primary,
		cache:    cache,
		logger:   logger,
		versions: make(map[string]uint64),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("cache get error", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		version := s.version(key)
		data, err := s.primary.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		s.backfill(ctx, key, data, version)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v.([]byte)...), nil
}

// backfill caches data read from the primary at version. A write that lands during the read makes
// the data stale: it is not cached, or is dropped again if the write raced the cache set.
func (s *CachedStore) backfill(ctx context.Context, key string, data []byte, version uint64) {
	if s.version(key) != version {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("cache set error", zap.String("key", key), zap.Error(err))
		return
	}
	if s.version(key) != version {
		s.invalidate(key)
	}
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.primary.Set(ctx, key, value); err != nil {
		return err
	}
	s.bump(key)
	s.invalidate(key)
	return nil
}

func (s *CachedStore) Remove(ctx context.Context, key string) error {
	if err := s.primary.Remove(ctx, key); err != nil {
		return err
	}
	s.bump(key)
	s.invalidate(key)
	return nil
}

func (s *CachedStore) Close() error {
	return errors.Join(s.cache.Close(), s.primary.Close())
}

func (s *CachedStore) version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key]
}

func (s *CachedStore) bump(key string) {
	s.mu.Lock()
	s.versions[key]++
	s.mu.Unlock()
}

func (s *CachedStore) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Remove(ctx, key); err != nil {
		s.logger.Warn("cache invalidate error", zap.String("key", key), zap.Error(err))
	}
}
