package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetRemove(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`[1]`)))
	got, err := s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`[2]`)))
	got, err = s.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	require.NoError(t, s.Remove(ctx, KeyCart))
	_, err = s.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)

	// absent key
	assert.NoError(t, s.Remove(ctx, "missing"))
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	out, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, "k", []byte("v"))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Get(ctx, "k")
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyCart, []byte(`[]`)))
	_, err := s.Get(ctx, KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Remove(ctx, KeyCart))
	assert.NoError(t, s.Close())
}
