package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/idgen"
	"github.com/fjod/go_cart/storefront/internal/listing"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrNothingStaged  = errors.New("nothing staged for checkout")
	ErrNothingInCart  = errors.New("no matching cart items to stage")
	ErrMissingContact = errors.New("customer name and email are required")
)

type Deps struct {
	Store      storage.Store
	Source     catalog.Source
	Publisher  events.Publisher
	IDs        idgen.Generator
	Logger     *zap.Logger
	LoginDelay time.Duration
	PerPage    int
	Debounce   time.Duration
}

// Customer is the contact part of the checkout form. Payment fields are accepted upstream and
// never stored.
type Customer struct {
	Name  string
	Email string
}

// Manager is the storefront state container. Every slice shares one store; flows that touch
// several slices (staging, placing an order) run under one lock.
type Manager struct {
	Catalog    *catalog.Loader
	Categories *catalog.Categories
	Cart       *cart.CartService
	Checkout   *checkout.CheckoutService
	Orders     *orders.OrderService
	Session    *session.SessionService
	Listing    *listing.View

	store     storage.Store
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time

	flow sync.Mutex
	wg   sync.WaitGroup
}

func New(d Deps) *Manager {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.IDs == nil {
		d.IDs = idgen.UUID()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	loader := catalog.NewLoader(d.Store, d.Source, d.IDs, d.Logger.Named("catalog"))
	return &Manager{
		Catalog:    loader,
		Categories: catalog.NewCategories(d.Source, d.Logger.Named("categories")),
		Cart:       cart.NewCartService(d.Store, d.Logger.Named("cart")),
		Checkout:   checkout.NewCheckoutService(d.Store, d.Logger.Named("checkout")),
		Orders:     orders.NewOrderService(d.Store, d.IDs, d.Logger.Named("orders")),
		Session:    session.NewSessionService(d.Store, d.LoginDelay, d.Logger.Named("session")),
		Listing:    listing.NewView(loader.Products, d.PerPage, d.Debounce),
		store:      d.Store,
		publisher:  d.Publisher,
		logger:     d.Logger.Named("state"),
		now:        time.Now,
	}
}

// Start restores the persisted slices and kicks off the catalog and category fetches in the
// background. It fails only when persisted state cannot be read.
func (m *Manager) Start(ctx context.Context) error {
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"cart", m.Cart.Load},
		{"checkout", m.Checkout.Load},
		{"orders", m.Orders.Load},
		{"session", m.Session.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return fmt.Errorf("restore %s: %w", l.name, err)
		}
	}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		if err := m.Catalog.Load(ctx); err != nil {
			m.logger.Error("catalog load failed", zap.Error(err))
		}
	}()
	go func() {
		defer m.wg.Done()
		if err := m.Categories.Load(ctx); err != nil {
			m.logger.Warn("category load failed, using fallback list", zap.Error(err))
		}
	}()

	m.logger.Info("state restored",
		zap.Int("cart_items", len(m.Cart.Items())),
		zap.Int("staged_items", len(m.Checkout.Items())),
		zap.Int("orders", len(m.Orders.Orders())),
		zap.Bool("logged_in", m.Session.LoggedIn()),
	)
	return nil
}

// Wait blocks until the background fetches started by Start settle.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) Close() error {
	m.Listing.Close()
	m.wg.Wait()
	return errors.Join(m.publisher.Close(), m.store.Close())
}

// StageCart snapshots the selected cart entries, or the whole cart when none are given, into checkout.
func (m *Manager) StageCart(ctx context.Context, productIDs ...string) ([]domain.CartItem, error) {
	m.flow.Lock()
	defer m.flow.Unlock()

	items := m.Cart.Items()
	if len(productIDs) > 0 {
		selected := make(map[string]struct{}, len(productIDs))
		for _, id := range productIDs {
			selected[id] = struct{}{}
		}
		filtered := items[:0]
		for _, item := range items {
			if _, ok := selected[item.ID]; ok {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if len(items) == 0 {
		return nil, ErrNothingInCart
	}

	if err := m.Checkout.AddToCheckout(ctx, items); err != nil {
		return nil, err
	}
	return m.Checkout.Items(), nil
}

// BuyNow stages a single catalog product with quantity 1, bypassing the cart.
func (m *Manager) BuyNow(ctx context.Context, productID string) ([]domain.CartItem, error) {
	product, ok := m.Catalog.Product(productID)
	if !ok {
		return nil, catalog.ErrProductNotFound
	}

	m.flow.Lock()
	defer m.flow.Unlock()

	if err := m.Checkout.AddToCheckout(ctx, []domain.CartItem{{Product: product, Quantity: 1}}); err != nil {
		return nil, err
	}
	return m.Checkout.Items(), nil
}

// PlaceOrder turns the staged snapshot into a Pending order, then clears the snapshot and drops
// the purchased products from the cart.
func (m *Manager) PlaceOrder(ctx context.Context, customer Customer) (domain.Order, error) {
	if customer.Name == "" || customer.Email == "" {
		return domain.Order{}, ErrMissingContact
	}

	m.flow.Lock()
	defer m.flow.Unlock()

	staged := m.Checkout.Items()
	if len(staged) == 0 {
		return domain.Order{}, ErrNothingStaged
	}

	order, err := m.Orders.MakeOrder(ctx, domain.Order{
		CustomerName: customer.Name,
		Email:        customer.Email,
		OrderDate:    m.now().UTC(),
		TotalAmount:  domain.TotalOf(staged),
		Items:        domain.ItemsFromCart(staged),
	})
	if err != nil {
		return domain.Order{}, err
	}

	// The order is recorded at this point. Cleanup outlives the caller's ctx and its failures are
	// logged, not returned.
	ctx = context.WithoutCancel(ctx)
	if err := m.Checkout.Clear(ctx); err != nil {
		m.logger.Error("failed to clear staged checkout", zap.String("order_id", order.ID), zap.Error(err))
	}
	purchased := make([]string, len(staged))
	for i, item := range staged {
		purchased[i] = item.ID
	}
	if err := m.Cart.RemoveProducts(ctx, purchased...); err != nil {
		m.logger.Error("failed to remove purchased items from cart", zap.String("order_id", order.ID), zap.Error(err))
	}

	m.publish(ctx, events.Event{
		Type:        events.TypeOrderPlaced,
		OrderID:     order.ID,
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount,
		Items:       len(order.Items),
		At:          order.OrderDate,
	})
	return order, nil
}

func (m *Manager) ChangeOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	order, err := m.Orders.ChangeOrderStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, err
	}
	m.publish(ctx, events.Event{
		Type:        events.TypeOrderStatusChanged,
		OrderID:     order.ID,
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount,
		At:          m.now().UTC(),
	})
	return order, nil
}

func (m *Manager) CancelOrder(ctx context.Context, id string) error {
	order, err := m.Orders.Order(id)
	if err != nil {
		return err
	}
	if err := m.Orders.CancelOrder(ctx, id); err != nil {
		return err
	}
	m.publish(ctx, events.Event{
		Type:        events.TypeOrderCancelled,
		OrderID:     id,
		TotalAmount: order.TotalAmount,
		At:          m.now().UTC(),
	})
	return nil
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("event publish failed",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
