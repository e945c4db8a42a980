package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrdersHandler struct {
	m      *state.Manager
	logger *zap.Logger
}

func NewOrdersHandler(m *state.Manager, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		m:      m,
		logger: logger,
	}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=Pending Shipped Delivered Cancelled"`
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: h.m.Orders.Orders()})
}

func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.m.Orders.Order(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	order, err := h.m.ChangeOrderStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Cancel removes the order from the ledger.
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.m.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
