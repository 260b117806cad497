package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/api/response"
	"github.com/caremate/caremate/internal/consultation"
	"github.com/caremate/caremate/internal/conversation"
)

// ConversationHandler handles conversation and chat endpoints.
type ConversationHandler struct {
	conversations *conversation.Service
	consultations *consultation.Service
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversations *conversation.Service, consultations *consultation.Service) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		consultations: consultations,
	}
}

// ListConversations handles GET /v1/conversations?userId= - list conversations.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, r, "userId query parameter is required", nil)
		return
	}

	result, err := h.conversations.List(r.Context(), userID, queryLimit(r, 50))
	if err != nil {
		response.InternalError(w, r, "failed to list conversations")
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// CreateConversation handles POST /v1/conversations - start a conversation.
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var input models.ConversationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.conversations.Create(r.Context(), &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/conversations/%s", result.ID)
	response.Created(w, r, location, result)
}

// GetConversation handles GET /v1/conversations/{conversationId}.
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")

	result, err := h.conversations.Get(r.Context(), conversationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// DeleteConversation handles DELETE /v1/conversations/{conversationId}.
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")

	if err := h.conversations.Delete(r.Context(), conversationID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w, r)
}

// ListMessages handles GET /v1/conversations/{conversationId}/messages.
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")

	result, err := h.conversations.Messages(r.Context(), conversationID, queryLimit(r, 100))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

// SendMessage handles POST /v1/conversations/{conversationId}/messages -
// one full chat turn through the assistant.
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")

	var input models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.consultations.Chat(r.Context(), conversationID, &input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *ConversationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *conversation.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.BadRequest(w, r, "validation failed", vErr.Errors)
	case errors.Is(err, conversation.ErrConversationNotFound):
		response.NotFound(w, r, "conversation not found")
	case errors.Is(err, consultation.ErrAssistantUnavailable):
		response.ServiceUnavailable(w, r, "The assistant is temporarily unavailable. Please try again in a moment.")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
