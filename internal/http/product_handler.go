package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/listing"
	"github.com/fjod/go_cart/storefront/internal/state"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errInvalidQuery = errors.New("invalid query parameter")

type ProductHandler struct {
	m       *state.Manager
	perPage int
	logger  *zap.Logger
}

func NewProductHandler(m *state.Manager, perPage int, logger *zap.Logger) *ProductHandler {
	if perPage < 1 {
		perPage = listing.DefaultPerPage
	}
	return &ProductHandler{
		m:       m,
		perPage: perPage,
		logger:  logger,
	}
}

type ProductRequestDTO struct {
	Name        string   `json:"name" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Description string   `json:"description" validate:"required"`
	ImageURL    string   `json:"imageUrl" validate:"required,url"`
}

func (d ProductRequestDTO) toProduct(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Category:    d.Category,
		Price:       *d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
	}
}

type CatalogStatusResponse struct {
	Loading  bool `json:"loading"`
	Products int  `json:"products"`
}

type ListingFilterResponse struct {
	Pending listing.Filter `json:"pending"`
	Applied listing.Filter `json:"applied"`
}

type SetPageRequestDTO struct {
	Page int `json:"page" validate:"required,min=1"`
}

// List filters and paginates the catalog from query parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		filter = listing.Filter{Category: q.Get("category"), Query: q.Get("q")}
		page   = 1
		per    = h.perPage
		err    error
	)
	if filter.MinPrice, err = parseFloat(q.Get("min_price")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if filter.MaxPrice, err = parseFloat(q.Get("max_price")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			handleError(w, r, h.logger, fmt.Errorf("%w: page", errInvalidQuery))
			return
		}
	}
	if v := q.Get("per_page"); v != "" {
		if per, err = strconv.Atoi(v); err != nil || per < 1 || per > 100 {
			handleError(w, r, h.logger, fmt.Errorf("%w: per_page", errInvalidQuery))
			return
		}
	}

	respondJSON(w, http.StatusOK, listing.Paginate(listing.Apply(h.m.Catalog.Products(), filter), page, per))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, ok := h.m.Catalog.Product(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found", "")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	product, err := h.m.Catalog.AddProduct(r.Context(), req.toProduct(""))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ProductRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	product, err := h.m.Catalog.EditProduct(r.Context(), req.toProduct(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.m.Catalog.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.m.Categories.Options())
}

func (h *ProductHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CatalogStatusResponse{
		Loading:  h.m.Catalog.Loading(),
		Products: len(h.m.Catalog.Products()),
	})
}

// Listing returns the current page of the stateful home listing.
func (h *ProductHandler) Listing(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.m.Listing.Current())
}

// SetListingFilter records a filter edit. It applies once edits stop for the debounce window.
func (h *ProductHandler) SetListingFilter(w http.ResponseWriter, r *http.Request) {
	var req listing.Filter
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if req.MinPrice < 0 || req.MaxPrice < 0 {
		handleError(w, r, h.logger, fmt.Errorf("%w: negative price bound", errInvalidQuery))
		return
	}

	h.m.Listing.SetFilter(req)
	pending, applied := h.m.Listing.Filters()
	respondJSON(w, http.StatusAccepted, ListingFilterResponse{Pending: pending, Applied: applied})
}

func (h *ProductHandler) SetListingPage(w http.ResponseWriter, r *http.Request) {
	var req SetPageRequestDTO
	if err := decodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	if err := h.m.Listing.SetPage(req.Page); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, h.m.Listing.Current())
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidQuery, v)
	}
	return f, nil
}
