package catalog

import (
	"context"
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

// extraCategories extends the upstream list with categories the demo API does not have.
var extraCategories = []string{
	"home appliances",
	"books",
	"toys",
	"sports equipment",
	"automotive",
	"health and beauty",
	"groceries",
	"furniture",
	"pet supplies",
}

const placeholderLabel = "Select Any category"

// Categories holds the selectable category options. They are recomputed every session.
type Categories struct {
	source Source
	logger *zap.Logger

	mu      sync.RWMutex
	options []domain.CategoryOption
}

func NewCategories(source Source, logger *zap.Logger) *Categories {
	return &Categories{
		source: source,
		logger: logger,
	}
}

// Load fetches the upstream categories. On failure the options still carry the placeholder and
// the fixed extension list.
func (c *Categories) Load(ctx context.Context) error {
	remote, err := c.source.FetchCategories(ctx)
	if err != nil {
		remote = nil
	}
	options := BuildOptions(remote)

	c.mu.Lock()
	c.options = options
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	c.logger.Debug("categories loaded", zap.Int("count", len(options)-1))
	return nil
}

func (c *Categories) Options() []domain.CategoryOption {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.CategoryOption(nil), c.options...)
}

// BuildOptions prepends the "select any" placeholder to remote + extension categories.
func BuildOptions(remote []string) []domain.CategoryOption {
	options := make([]domain.CategoryOption, 0, len(remote)+len(extraCategories)+1)
	options = append(options, domain.CategoryOption{Value: "", Label: placeholderLabel})
	for _, list := range [][]string{remote, extraCategories} {
		for _, name := range list {
			options = append(options, domain.CategoryOption{Value: name, Label: capitalize(name)})
		}
	}
	return options
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
