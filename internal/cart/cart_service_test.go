package cart

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	productA = domain.Product{ID: "a", Name: "Backpack", Category: "bags", Price: 10}
	productB = domain.Product{ID: "b", Name: "Ring", Category: "jewelery", Price: 2.5}
)

func newTestService(t *testing.T) (*CartService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewCartService(store, zap.NewNop()), store
}

func quantities(items []domain.CartItem) map[string]int {
	out := make(map[string]int, len(items))
	for _, item := range items {
		out[item.ID] = item.Quantity
	}
	return out
}

func TestAddToCart_Twice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, productA)
	require.NoError(t, err)
	items, err := svc.AddToCart(ctx, productA)
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Backpack", items[0].Name)
}

func TestRemoveFromCart_LastUnitDeletesEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddToCart(ctx, productA)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, productB)
	require.NoError(t, err)

	items, err := svc.RemoveFromCart(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"b": 1}, quantities(items))
}

func TestRemoveFromCart_Decrements(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.AddToCart(ctx, productA)
		require.NoError(t, err)
	}

	items, err := svc.RemoveFromCart(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2}, quantities(items))
}

func TestRemoveFromCart_Missing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RemoveFromCart(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrItemNotInCart)
}

func TestRandomSequencesNeverProduceNonPositiveQuantities(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	products := []domain.Product{productA, productB, {ID: "c", Name: "Lamp", Price: 7}}
	expected := map[string]int{}

	for i := 0; i < 500; i++ {
		p := products[rng.Intn(len(products))]
		if rng.Intn(2) == 0 {
			_, err := svc.AddToCart(ctx, p)
			require.NoError(t, err)
			expected[p.ID]++
			continue
		}
		_, err := svc.RemoveFromCart(ctx, p.ID)
		if expected[p.ID] == 0 {
			require.ErrorIs(t, err, ErrItemNotInCart)
			continue
		}
		require.NoError(t, err)
		expected[p.ID]--
		if expected[p.ID] == 0 {
			delete(expected, p.ID)
		}
	}

	items := svc.Items()
	for _, item := range items {
		assert.GreaterOrEqual(t, item.Quantity, 1)
	}
	assert.Equal(t, expected, quantities(items))
}

func TestRoundTrip(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddToCart(ctx, productA)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, productB)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, productA)
	require.NoError(t, err)

	reloaded := NewCartService(store, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, quantities(svc.Items()), quantities(reloaded.Items()))
	assert.ElementsMatch(t, svc.Items(), reloaded.Items())
}

func TestLoad_RejectsBrokenCollection(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, storage.KeyCart, []byte(`[{"id":"a","name":"x","category":"","price":1,"imageUrl":"","quantity":0}]`)))

	err := svc.Load(ctx)

	assert.ErrorIs(t, err, storage.ErrCorrupt)
	assert.Empty(t, svc.Items())
}

func TestUpdateCartData(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	err := svc.UpdateCartData(ctx, []domain.CartItem{
		{Product: productA, Quantity: 4},
		{Product: productB, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 4, "b": 1}, quantities(svc.Items()))
	assert.Equal(t, 42.5, svc.Total())
	assert.Equal(t, 40.0, svc.Total("a"))

	var persisted []domain.CartItem
	_, err = storage.GetJSON(ctx, store, storage.KeyCart, &persisted)
	require.NoError(t, err)
	assert.Equal(t, svc.Items(), persisted)
}

func TestUpdateCartData_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		want  error
	}{
		{"zero quantity", []domain.CartItem{{Product: productA, Quantity: 0}}, ErrInvalidQuantity},
		{"negative quantity", []domain.CartItem{{Product: productA, Quantity: -2}}, ErrInvalidQuantity},
		{"duplicate id", []domain.CartItem{{Product: productA, Quantity: 1}, {Product: productA, Quantity: 2}}, ErrDuplicateItem},
		{"missing id", []domain.CartItem{{Product: domain.Product{Name: "x"}, Quantity: 1}}, ErrInvalidProduct},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.AddToCart(context.Background(), productB)
			require.NoError(t, err)

			err = svc.UpdateCartData(context.Background(), tt.items)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, map[string]int{"b": 1}, quantities(svc.Items()))
		})
	}
}

func TestClearCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	_, err := svc.AddToCart(ctx, productA)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx))

	assert.Empty(t, svc.Items())
	assert.Zero(t, svc.Total())
	raw, err := store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRemoveProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.UpdateCartData(ctx, []domain.CartItem{
		{Product: productA, Quantity: 3},
		{Product: productB, Quantity: 1},
	}))

	require.NoError(t, svc.RemoveProducts(ctx, "a", "zzz"))

	assert.Equal(t, map[string]int{"b": 1}, quantities(svc.Items()))
}

func TestItemsReturnsCopy(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddToCart(context.Background(), productA)
	require.NoError(t, err)

	items := svc.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, svc.Items()[0].Quantity)
}

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("quota exceeded")
}

func TestWriteFailureKeepsMemoryAndStorageAligned(t *testing.T) {
	svc := NewCartService(failingStore{storage.NewMemoryStore()}, zap.NewNop())

	_, err := svc.AddToCart(context.Background(), productA)

	require.Error(t, err)
	assert.Empty(t, svc.Items())
}
