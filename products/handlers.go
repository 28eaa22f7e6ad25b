package products

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// Handlers exposes the product service over HTTP.
type Handlers struct {
	service Service
}

// NewHandlers creates product HTTP handlers backed by the given service.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires the product endpoints onto the given router.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList())
	r.Post("/", h.HandleCreate())
	r.Get("/{id}", h.HandleGet())
	r.Put("/{id}", h.HandleUpdate())
	r.Delete("/{id}", h.HandleDelete())
}

// parseFilter reads the list query parameters. A value that fails to parse is
// a validation error, not a silent no-op.
func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	q := r.URL.Query()

	if v := q.Get("name"); v != "" {
		filter.Name = &v
	}
	if v := q.Get("category"); v != "" {
		filter.Category = &v
	}
	if v := q.Get("min_price"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filter{}, apperror.NewValidationError("invalid value for min_price", err)
		}
		filter.MinPrice = &minPrice
	}
	if v := q.Get("max_price"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filter{}, apperror.NewValidationError("invalid value for max_price", err)
		}
		filter.MaxPrice = &maxPrice
	}
	if v := q.Get("is_active"); v != "" {
		isActive, err := strconv.ParseBool(v)
		if err != nil {
			return Filter{}, apperror.NewValidationError("invalid value for is_active", err)
		}
		filter.IsActive = &isActive
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Filter{}, apperror.NewValidationError("invalid value for limit", err)
		}
		filter.Limit = &limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Filter{}, apperror.NewValidationError("invalid value for offset", err)
		}
		filter.Offset = &offset
	}

	return filter, nil
}

// HandleList godoc
// @Summary List products
// @Description Lists products with optional filtering and pagination.
// @Tags Products
// @Produce json
// @Param name query string false "Partial name match (case-insensitive)"
// @Param category query string false "Exact category match"
// @Param min_price query number false "Inclusive lower price bound"
// @Param max_price query number false "Inclusive upper price bound"
// @Param is_active query boolean false "Filter by active status"
// @Param limit query integer false "Maximum number of results"
// @Param offset query integer false "Number of results to skip"
// @Success 200 {array} products.Product
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/products [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		list, err := h.service.List(r.Context(), filter)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleGet godoc
// @Summary Get a product by ID
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} products.Product
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/products/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, product)
	}
}

// HandleCreate godoc
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Param product body products.CreateProductRequest true "Product to create"
// @Success 201 {object} products.Product
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/products [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		product, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, product)
	}
}

// HandleUpdate godoc
// @Summary Update a product
// @Description Applies a partial update; only fields present in the body change.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body products.UpdateProductRequest true "Fields to update"
// @Success 200 {object} products.Product
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/products/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, product)
	}
}

// HandleDelete godoc
// @Summary Delete a product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} products.DeleteResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")
		if err := h.service.Delete(r.Context(), idParam); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, DeleteResponse{
			Success: true,
			Message: fmt.Sprintf("Product with ID %s successfully deleted", idParam),
		})
	}
}
