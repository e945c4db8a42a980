package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/state"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	m      *state.Manager
	logger *zap.Logger
}

func NewCheckoutHandler(m *state.Manager, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		m:      m,
		logger: logger,
	}
}

type StageRequestDTO struct {
	ProductIDs []string `json:"product_ids" validate:"omitempty,dive,required"`
}

type BuyNowRequestDTO struct {
	ProductID string `json:"product_id" validate:"required"`
}

// PlaceOrderRequestDTO is the checkout form. Payment fields are checked for presence only and
// are never stored.
type PlaceOrderRequestDTO struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Address        string `json:"address" validate:"required"`
	CardNumber     string `json:"card_number" validate:"required"`
	ExpirationDate string `json:"expiration_date" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	items := h.m.Checkout.Items()
	respondJSON(w, http.StatusOK, cartResponse(items, domain.TotalOf(items)))
}

// Stage snapshots the selected cart items (all of them when product_ids is empty).
func (h *CheckoutHandler) Stage(w http.ResponseWriter, r *http.Request) {
	var req StageRequestDTO
	if r.ContentLength != 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			handleError(w, r, h.logger, err)
			return
		}
	}

	items, err := h.m.StageCart(r.Context(), req.ProductIDs...)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(items, domain.TotalOf(items)))
}

func (h *CheckoutHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req BuyNowRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	items, err := h.m.BuyNow(r.Context(), req.ProductID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(items, domain.TotalOf(items)))
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	order, err := h.m.PlaceOrder(r.Context(), state.Customer{Name: req.FullName, Email: req.Email})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	logger.WithTrace(r.Context(), h.logger).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("request_id", getRequestID(r.Context())),
	)
	respondJSON(w, http.StatusCreated, order)
}
