package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/api/response"
	"github.com/caremate/caremate/internal/user"
)

// UserHandler handles user account endpoints.
type UserHandler struct {
	service *user.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ListUsers handles GET /v1/users - list user accounts.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), queryLimit(r, 50))
	if err != nil {
		response.InternalError(w, r, "failed to list users")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// CreateUser handles POST /v1/users - create a user account.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input models.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/users/%s", result.ID)
	response.Created(w, r, location, result)
}

// GetUser handles GET /v1/users/{userId} - get a user account.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	result, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// UpdateUser handles PUT /v1/users/{userId} - update a user account.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// DeleteUser handles DELETE /v1/users/{userId} - delete a user account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.service.Delete(r.Context(), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *user.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, r, "validation failed", vErr.Errors)
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, r, "user not found")
	case errors.Is(err, user.ErrDuplicateEmail):
		response.Conflict(w, r, "email already registered")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

// queryLimit parses the limit query parameter, falling back to a default.
func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 200 {
		return def
	}
	return limit
}
