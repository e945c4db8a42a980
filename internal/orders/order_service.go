package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/idgen"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrEmptyOrder        = errors.New("order has no items")
)

// OrderService is the ledger of placed orders.
type OrderService struct {
	store  storage.Store
	ids    idgen.Generator
	logger *zap.Logger
	now    func() time.Time

	mu     sync.RWMutex
	orders []domain.Order
}

func NewOrderService(store storage.Store, ids idgen.Generator, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:  store,
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
}

func (s *OrderService) Load(ctx context.Context) error {
	var orders []domain.Order
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyOrders, &orders); err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	if err := validateLedger(orders); err != nil {
		return fmt.Errorf("load orders: %w: %v", storage.ErrCorrupt, err)
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

// MakeOrder appends order as Pending. The total is taken as given.
func (s *OrderService) MakeOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}
	if order.ID == "" {
		order.ID = s.ids.NewID()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = s.now().UTC()
	}
	order.Status = domain.OrderStatusPending
	order.Items = append([]domain.OrderItem(nil), order.Items...)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Order, 0, len(s.orders)+1)
	next = append(next, s.orders...)
	next = append(next, order)
	if err := s.commit(ctx, next); err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Float64("total", order.TotalAmount),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// ChangeOrderStatus moves one order along the status machine. Only the status field changes.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if !status.IsValid() {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrUnknownOrderStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Order{}, ErrOrderNotFound
	}
	current := s.orders[i].Status
	if !domain.CanTransitionTo(current, status) {
		return domain.Order{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, status)
	}

	next := append([]domain.Order(nil), s.orders...)
	next[i].Status = status
	if err := s.commit(ctx, next); err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", current.String()),
		zap.String("to", status.String()),
	)
	return next[i], nil
}

// CancelOrder deletes the order from the ledger. Marking an order Cancelled while keeping it
// goes through ChangeOrderStatus instead.
func (s *OrderService) CancelOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrOrderNotFound
	}
	next := make([]domain.Order, 0, len(s.orders)-1)
	next = append(next, s.orders[:i]...)
	next = append(next, s.orders[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("order removed", zap.String("order_id", id))
	return nil
}

func (s *OrderService) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o
		out[i].Items = append([]domain.OrderItem(nil), o.Items...)
	}
	return out
}

func (s *OrderService) Order(id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Order{}, ErrOrderNotFound
	}
	o := s.orders[i]
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o, nil
}

// commit persists next before swapping it in. Callers hold mu.
func (s *OrderService) commit(ctx context.Context, next []domain.Order) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyOrders, next); err != nil {
		s.logger.Error("orders write failed", zap.Error(err))
		return fmt.Errorf("persist orders: %w", err)
	}
	s.orders = next
	return nil
}

func (s *OrderService) indexOf(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func validateLedger(orders []domain.Order) error {
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if o.ID == "" {
			return errors.New("order without id")
		}
		if !o.Status.IsValid() {
			return fmt.Errorf("order %s: %w: %q", o.ID, domain.ErrUnknownOrderStatus, o.Status)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("duplicate order %s", o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}
