package listing

import (
	"errors"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrPageOutOfRange = errors.New("page out of range")

// View is the browsing state of the home listing: the applied filter and the current page.
// Filter edits are debounced; once one settles the page resets to 1.
type View struct {
	products func() []domain.Product
	perPage  int
	debounce *Debouncer[Filter]

	mu      sync.RWMutex
	pending Filter
	applied Filter
	page    int
}

func NewView(products func() []domain.Product, perPage int, wait time.Duration) *View {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	v := &View{
		products: products,
		perPage:  perPage,
		page:     1,
	}
	v.debounce = NewDebouncer(wait, v.apply)
	return v
}

func (v *View) apply(f Filter) {
	v.mu.Lock()
	v.applied = f
	v.page = 1
	v.mu.Unlock()
}

// SetFilter records an edit; it takes effect after the debounce window.
func (v *View) SetFilter(f Filter) {
	v.mu.Lock()
	v.pending = f
	v.mu.Unlock()
	v.debounce.Push(f)
}

// Settle applies a pending filter edit without waiting.
func (v *View) Settle() {
	v.debounce.Flush()
}

func (v *View) SetPage(page int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	total := len(Apply(v.products(), v.applied))
	totalPages := (total + v.perPage - 1) / v.perPage
	if page < 1 || page > totalPages {
		return ErrPageOutOfRange
	}
	v.page = page
	return nil
}

// Filters returns the edited filter and the one currently applied to the listing.
func (v *View) Filters() (pending, applied Filter) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pending, v.applied
}

func (v *View) Current() Page[domain.Product] {
	v.mu.RLock()
	filter, page := v.applied, v.page
	v.mu.RUnlock()

	return Paginate(Apply(v.products(), filter), page, v.perPage)
}

func (v *View) Close() {
	v.debounce.Stop()
}
