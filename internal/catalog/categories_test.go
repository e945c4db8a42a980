package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildOptions(t *testing.T) {
	options := BuildOptions([]string{"electronics", "men's clothing"})

	require.Len(t, options, 1+2+len(extraCategories))
	assert.Equal(t, domain.CategoryOption{Value: "", Label: "Select Any category"}, options[0])
	assert.Equal(t, domain.CategoryOption{Value: "electronics", Label: "Electronics"}, options[1])
	assert.Equal(t, domain.CategoryOption{Value: "men's clothing", Label: "Men's clothing"}, options[2])
	assert.Equal(t, domain.CategoryOption{Value: "pet supplies", Label: "Pet supplies"}, options[len(options)-1])
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"books", "Books"},
		{"électronique", "Électronique"},
		{"Toys", "Toys"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, capitalize(tt.in), tt.in)
	}
}

func TestCategories_Load(t *testing.T) {
	categories := NewCategories(&fakeSource{categories: []string{"jewelery"}}, zap.NewNop())
	assert.Empty(t, categories.Options())

	require.NoError(t, categories.Load(context.Background()))

	options := categories.Options()
	require.Len(t, options, 2+len(extraCategories))
	assert.Equal(t, "Jewelery", options[1].Label)
}

func TestCategories_LoadFailureFallsBack(t *testing.T) {
	categories := NewCategories(&fakeSource{err: errors.New("timeout")}, zap.NewNop())

	err := categories.Load(context.Background())

	require.Error(t, err)
	options := categories.Options()
	require.Len(t, options, 1+len(extraCategories))
	assert.Equal(t, "Home appliances", options[1].Label)
}
