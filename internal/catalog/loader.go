package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/idgen"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Loader owns the product catalog: the one-time remote seed and the admin mutations.
type Loader struct {
	store  storage.Store
	source Source
	ids    idgen.Generator
	logger *zap.Logger
	now    func() time.Time

	sfg     singleflight.Group
	loading atomic.Bool
	settled atomic.Bool

	mu       sync.RWMutex
	products []domain.Product
}

func NewLoader(store storage.Store, source Source, ids idgen.Generator, logger *zap.Logger) *Loader {
	l := &Loader{
		store:  store,
		source: source,
		ids:    ids,
		logger: logger,
		now:    time.Now,
	}
	l.loading.Store(true)
	return l
}

// Loading reports whether the first catalog load is still in flight.
func (l *Loader) Loading() bool {
	return l.loading.Load()
}

// Load fetches the remote catalog once per process. Fresh ids are generated for every fetched
// record; the result only seeds storage when nothing was persisted before.
func (l *Loader) Load(ctx context.Context) error {
	if l.settled.Load() {
		return nil
	}
	_, err, _ := l.sfg.Do("load", func() (interface{}, error) {
		if l.settled.Load() {
			return nil, nil
		}
		defer func() {
			l.settled.Store(true)
			l.loading.Store(false)
		}()
		return nil, l.load(ctx)
	})
	return err
}

func (l *Loader) load(ctx context.Context) error {
	remote, fetchErr := l.source.FetchProducts(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	var stored []domain.Product
	if _, err := storage.GetJSON(ctx, l.store, storage.KeyProducts, &stored); err != nil {
		return fmt.Errorf("read persisted catalog: %w", err)
	}

	if fetchErr != nil {
		l.products = stored
		l.logger.Error("catalog fetch failed",
			zap.Int("persisted", len(stored)),
			zap.Error(fetchErr),
		)
		return fmt.Errorf("fetch products: %w", fetchErr)
	}

	if len(stored) > 0 {
		l.products = stored
		l.logger.Info("persisted catalog kept", zap.Int("count", len(stored)), zap.Int("fetched", len(remote)))
		return nil
	}

	seeded := l.mapProducts(remote)
	if err := storage.SetJSON(ctx, l.store, storage.KeyProducts, seeded); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	l.products = seeded
	l.logger.Info("catalog seeded", zap.Int("count", len(seeded)))
	return nil
}

func (l *Loader) mapProducts(remote []RemoteProduct) []domain.Product {
	products := make([]domain.Product, 0, len(remote))
	for _, r := range remote {
		products = append(products, domain.Product{
			ID:          l.ids.NewID(),
			Name:        r.Title,
			Category:    r.Category,
			Price:       r.Price,
			ImageURL:    r.Image,
			Description: r.Description,
		})
	}
	return products
}

// Products returns a copy of the catalog.
func (l *Loader) Products() []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Product(nil), l.products...)
}

func (l *Loader) Product(id string) (domain.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := indexOf(l.products, id)
	if i < 0 {
		return domain.Product{}, false
	}
	return l.products[i], true
}

// AddProduct prepends p, assigning an id and creation time when missing.
func (l *Loader) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Name == "" || p.Price < 0 {
		return domain.Product{}, ErrInvalidProduct
	}
	if p.ID == "" {
		p.ID = l.ids.NewID()
	}
	if p.CreatedAt == nil {
		now := l.now()
		p.CreatedAt = &now
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if indexOf(l.products, p.ID) >= 0 {
		return domain.Product{}, fmt.Errorf("%w: duplicate id %s", ErrInvalidProduct, p.ID)
	}

	next := make([]domain.Product, 0, len(l.products)+1)
	next = append(next, p)
	next = append(next, l.products...)
	if err := l.commit(ctx, next); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// EditProduct replaces the product with the same id and stamps its update time.
func (l *Loader) EditProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.Name == "" || p.Price < 0 {
		return domain.Product{}, ErrInvalidProduct
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.products, p.ID)
	if i < 0 {
		return domain.Product{}, ErrProductNotFound
	}
	if p.CreatedAt == nil {
		p.CreatedAt = l.products[i].CreatedAt
	}
	now := l.now()
	p.UpdatedAt = &now

	next := append([]domain.Product(nil), l.products...)
	next[i] = p
	if err := l.commit(ctx, next); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (l *Loader) RemoveProduct(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.products, id)
	if i < 0 {
		return ErrProductNotFound
	}
	next := make([]domain.Product, 0, len(l.products)-1)
	next = append(next, l.products[:i]...)
	next = append(next, l.products[i+1:]...)
	return l.commit(ctx, next)
}

// UpdateProducts replaces the whole catalog.
func (l *Loader) UpdateProducts(ctx context.Context, products []domain.Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("%w: missing id", ErrInvalidProduct)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(ctx, append([]domain.Product(nil), products...))
}

// commit persists next and only then swaps it in. Callers hold mu.
func (l *Loader) commit(ctx context.Context, next []domain.Product) error {
	if err := storage.SetJSON(ctx, l.store, storage.KeyProducts, next); err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	l.products = next
	return nil
}

func indexOf(products []domain.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
