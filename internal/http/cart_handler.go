package http

import (
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	m      *state.Manager
	logger *zap.Logger
}

func NewCartHandler(m *state.Manager, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		m:      m,
		logger: logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id" validate:"required"`
}

type CartLineDTO struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1,max=99"`
}

type ReplaceCartRequestDTO struct {
	Items []CartLineDTO `json:"items" validate:"dive"`
}

type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func cartResponse(items []domain.CartItem, total float64) CartResponse {
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{Items: items, Total: total}
}

// GetCart returns the cart. ?selected=a,b limits the total to those products.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	var selected []string
	if v := r.URL.Query().Get("selected"); v != "" {
		selected = strings.Split(v, ",")
	}
	respondJSON(w, http.StatusOK, cartResponse(h.m.Cart.Items(), h.m.Cart.Total(selected...)))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	product, ok := h.m.Catalog.Product(req.ProductID)
	if !ok {
		handleError(w, r, h.logger, catalog.ErrProductNotFound)
		return
	}
	items, err := h.m.Cart.AddToCart(r.Context(), product)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, cartResponse(items, domain.TotalOf(items)))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	items, err := h.m.Cart.RemoveFromCart(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(items, domain.TotalOf(items)))
}

// ReplaceCart sets the cart to exactly the given product quantities.
func (h *CartHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req ReplaceCartRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, ok := h.m.Catalog.Product(line.ProductID)
		if !ok {
			handleError(w, r, h.logger, catalog.ErrProductNotFound)
			return
		}
		items = append(items, domain.CartItem{Product: product, Quantity: line.Quantity})
	}
	if err := h.m.Cart.UpdateCartData(r.Context(), items); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(h.m.Cart.Items(), h.m.Cart.Total()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.m.Cart.ClearCart(r.Context()); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(nil, 0))
}
