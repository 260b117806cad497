package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/api/response"
	"github.com/caremate/caremate/internal/record"
)

// RecordHandler handles health record endpoints.
type RecordHandler struct {
	service *record.Service
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(service *record.Service) *RecordHandler {
	return &RecordHandler{service: service}
}

// ListRecords handles GET /v1/users/{userId}/records.
func (h *RecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	result, err := h.service.List(r.Context(), userID, queryLimit(r, 50))
	if err != nil {
		response.InternalError(w, r, "failed to list records")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// CreateRecord handles POST /v1/users/{userId}/records.
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input models.RecordCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/users/%s/records/%s", userID, result.ID)
	response.Created(w, r, location, result)
}

// GetRecord handles GET /v1/users/{userId}/records/{recordId}.
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	recordID := chi.URLParam(r, "recordId")

	result, err := h.service.Get(r.Context(), userID, recordID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// UpdateRecord handles PUT /v1/users/{userId}/records/{recordId}.
func (h *RecordHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	recordID := chi.URLParam(r, "recordId")

	var input models.RecordUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, recordID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// DeleteRecord handles DELETE /v1/users/{userId}/records/{recordId}.
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	recordID := chi.URLParam(r, "recordId")

	if err := h.service.Delete(r.Context(), userID, recordID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *RecordHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *record.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, r, "validation failed", vErr.Errors)
	case errors.Is(err, record.ErrRecordNotFound):
		response.NotFound(w, r, "health record not found")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
