package storage

import (
	"context"
	"errors"
)

// Durability keys. Each key holds exactly one JSON value.
const (
	KeyProducts    = "products"
	KeyCart        = "cart"
	KeyCheckout    = "checkoutItems"
	KeyOrders      = "orders"
	KeyCurrentUser = "currentUser"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrCorrupt  = errors.New("stored value does not match the expected shape")
)

// Store persists opaque values under string keys. Set overwrites the whole value in one step.
// Remove of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
