package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

// CartService holds the live cart. Each mutation writes the resulting collection to the store
// before it becomes visible, so the persisted and in-memory carts always agree.
type CartService struct {
	store  storage.Store
	logger *zap.Logger

	mu    sync.RWMutex
	items []domain.CartItem
}

func NewCartService(store storage.Store, logger *zap.Logger) *CartService {
	return &CartService{
		store:  store,
		logger: logger,
	}
}

// Load restores the persisted cart, replacing whatever is held in memory.
func (s *CartService) Load(ctx context.Context) error {
	var items []domain.CartItem
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyCart, &items); err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	if err := validate(items); err != nil {
		return fmt.Errorf("load cart: %w: %v", storage.ErrCorrupt, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *CartService) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneItems(s.items)
}

// Total sums price * quantity over the selected product ids, or over the whole cart when none are given.
func (s *CartService) Total(selectedIDs ...string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(selectedIDs) == 0 {
		return domain.TotalOf(s.items)
	}
	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}
	var total float64
	for _, item := range s.items {
		if _, ok := selected[item.ID]; ok {
			total += item.Subtotal()
		}
	}
	return total
}

// AddToCart increments the quantity of product, inserting it with quantity 1 when absent.
func (s *CartService) AddToCart(ctx context.Context, product domain.Product) ([]domain.CartItem, error) {
	if product.ID == "" {
		return nil, ErrInvalidProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.CloneItems(s.items)
	if i := indexOf(next, product.ID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, domain.CartItem{Product: product, Quantity: 1})
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return domain.CloneItems(next), nil
}

// RemoveFromCart decrements the quantity of productID and drops the entry once it would reach zero.
func (s *CartService) RemoveFromCart(ctx context.Context, productID string) ([]domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, productID)
	if i < 0 {
		return nil, ErrItemNotInCart
	}

	next := domain.CloneItems(s.items)
	if next[i].Quantity > 1 {
		next[i].Quantity--
	} else {
		next = append(next[:i], next[i+1:]...)
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return domain.CloneItems(next), nil
}

// UpdateCartData replaces the whole cart.
func (s *CartService) UpdateCartData(ctx context.Context, items []domain.CartItem) error {
	if err := validate(items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, domain.CloneItems(items))
}

func (s *CartService) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, []domain.CartItem{})
}

// RemoveProducts drops every entry for the given product ids regardless of quantity.
func (s *CartService) RemoveProducts(ctx context.Context, productIDs ...string) error {
	drop := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CartItem, 0, len(s.items))
	for _, item := range s.items {
		if _, ok := drop[item.ID]; !ok {
			next = append(next, item)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	return s.commit(ctx, domain.CloneItems(next))
}

// commit persists next and then swaps it in. Callers hold mu.
func (s *CartService) commit(ctx context.Context, next []domain.CartItem) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyCart, next); err != nil {
		s.logger.Error("cart write failed", zap.Error(err))
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = next
	return nil
}

func validate(items []domain.CartItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return ErrInvalidProduct
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %s has %d", ErrInvalidQuantity, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

func indexOf(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
