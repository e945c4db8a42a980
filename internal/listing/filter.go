package listing

import (
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Filter narrows the product listing. Zero values disable a criterion; MaxPrice 0 means unbounded.
type Filter struct {
	Category string  `json:"category"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Query    string  `json:"q"`
}

func (f Filter) matches(p domain.Product, query string) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	return query == "" || strings.Contains(strings.ToLower(p.Name), query)
}

// Apply returns the products matching f, in their original order.
func Apply(products []domain.Product, f Filter) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p, query) {
			out = append(out, p)
		}
	}
	return out
}
