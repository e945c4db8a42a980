package storage

import "context"

// NopStore stands in when no storage host is available: reads find nothing and writes are dropped.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
func (NopStore) Set(context.Context, string, []byte) error { return nil }
func (NopStore) Remove(context.Context, string) error { return nil }
func (NopStore) Close() error { return nil }
