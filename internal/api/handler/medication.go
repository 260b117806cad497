package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/api/response"
	"github.com/caremate/caremate/internal/medication"
)

// MedicationHandler handles medication endpoints.
type MedicationHandler struct {
	service *medication.Service
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(service *medication.Service) *MedicationHandler {
	return &MedicationHandler{service: service}
}

// ListMedications handles GET /v1/users/{userId}/medications.
// Pass ?active=true to restrict results to medications still being taken.
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	activeOnly := r.URL.Query().Get("active") == "true"

	result, err := h.service.List(r.Context(), userID, queryLimit(r, 50), activeOnly)
	if err != nil {
		response.InternalError(w, r, "failed to list medications")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// CreateMedication handles POST /v1/users/{userId}/medications.
func (h *MedicationHandler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var input models.MedicationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/users/%s/medications/%s", userID, result.ID)
	response.Created(w, r, location, result)
}

// GetMedication handles GET /v1/users/{userId}/medications/{medicationId}.
func (h *MedicationHandler) GetMedication(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	medicationID := chi.URLParam(r, "medicationId")

	result, err := h.service.Get(r.Context(), userID, medicationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// UpdateMedication handles PUT /v1/users/{userId}/medications/{medicationId}.
func (h *MedicationHandler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	medicationID := chi.URLParam(r, "medicationId")

	var input models.MedicationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, medicationID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// DeleteMedication handles DELETE /v1/users/{userId}/medications/{medicationId}.
func (h *MedicationHandler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	medicationID := chi.URLParam(r, "medicationId")

	if err := h.service.Delete(r.Context(), userID, medicationID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

func (h *MedicationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *medication.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, r, "validation failed", vErr.Errors)
	case errors.Is(err, medication.ErrMedicationNotFound):
		response.NotFound(w, r, "medication not found")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
