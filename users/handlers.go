package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
)

// Handlers exposes the user service over HTTP.
type Handlers struct {
	service Service
}

// NewHandlers creates user HTTP handlers backed by the given service.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes wires the user endpoints onto the given router. Login lives
// under /api/auth and is registered separately in main.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList())
	r.Post("/", h.HandleRegister())
	r.Get("/{id}", h.HandleGet())
	r.Put("/{id}", h.HandleUpdate())
	r.Delete("/{id}", h.HandleDelete())
}

func parseFilter(r *http.Request) (Filter, error) {
	var filter Filter
	q := r.URL.Query()

	if v := q.Get("username"); v != "" {
		filter.Username = &v
	}
	if v := q.Get("email"); v != "" {
		filter.Email = &v
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

// HandleRegister godoc
// @Summary Register a new user
// @Description Creates an account. The response never contains the password.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body users.RegisterRequest true "Registration details"
// @Success 201 {object} users.UserResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Email or username already in use"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/users [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Description Authenticates by email and password and returns the user with a signed token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body users.LoginRequest true "Login credentials"
// @Success 200 {object} users.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid email or password"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleList godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param username query string false "Partial username match (case-insensitive)"
// @Param email query string false "Partial email match (case-insensitive)"
// @Param limit query integer false "Maximum number of results"
// @Param offset query integer false "Number of results to skip"
// @Success 200 {array} users.UserResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/users [get]
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
// @Summary Get a user by ID
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} users.UserResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/users/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdate godoc
// @Summary Update a user
// @Description Applies a partial update; the password is re-hashed only when supplied.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body users.UpdateUserRequest true "Fields to update"
// @Success 200 {object} users.UserResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/users/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleDelete godoc
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} users.DeleteResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")
		if err := h.service.Delete(r.Context(), idParam); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, DeleteResponse{
			Success: true,
			Message: fmt.Sprintf("User with ID %s successfully deleted", idParam),
		})
	}
}
