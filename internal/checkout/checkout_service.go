package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrEmptySelection  = errors.New("no items selected for checkout")
	ErrInvalidQuantity = errors.New("staged quantity must be at least 1")
)

// CheckoutService keeps the staged snapshot of cart items selected for purchase.
// The snapshot shares no memory with the live cart.
type CheckoutService struct {
	store  storage.Store
	logger *zap.Logger

	mu    sync.RWMutex
	items []domain.CartItem
}

func NewCheckoutService(store storage.Store, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:  store,
		logger: logger,
	}
}

func (s *CheckoutService) Load(ctx context.Context) error {
	var items []domain.CartItem
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyCheckout, &items); err != nil {
		return fmt.Errorf("load checkout: %w", err)
	}
	if err := validateSnapshot(items); err != nil {
		return fmt.Errorf("load checkout: %w: %v", storage.ErrCorrupt, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// AddToCheckout replaces the staged snapshot with a copy of items.
func (s *CheckoutService) AddToCheckout(ctx context.Context, items []domain.CartItem) error {
	if len(items) == 0 {
		return ErrEmptySelection
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ID)
		}
	}

	snapshot := domain.CloneItems(items)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.SetJSON(ctx, s.store, storage.KeyCheckout, snapshot); err != nil {
		return fmt.Errorf("persist checkout: %w", err)
	}
	s.items = snapshot
	s.logger.Debug("checkout staged", zap.Int("items", len(snapshot)))
	return nil
}

func (s *CheckoutService) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneItems(s.items)
}

// Clear drops the staged snapshot from memory and storage.
func (s *CheckoutService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, storage.KeyCheckout); err != nil {
		return fmt.Errorf("clear checkout: %w", err)
	}
	s.items = nil
	return nil
}

func validateSnapshot(items []domain.CartItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return errors.New("staged item without id")
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %s has %d", ErrInvalidQuantity, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate staged item %s", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
