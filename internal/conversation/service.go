package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/caremate/caremate/internal/api/models"
)

// Service errors.
var (
	ErrNotAuthorized = errors.New("not authorized to access this conversation")
)

// Validation constants.
const (
	MaxTitleLength   = 120
	DefaultTitle     = "New conversation"
	MaxContentLength = 4000
)

// Service provides conversation operations.
type Service struct {
	repo Repository
}

// NewService creates a new conversation service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all conversations for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedConversations, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Conversation, 0, len(result.Items))
	for _, conv := range result.Items {
		items = append(items, s.toAPIConversation(conv))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedConversations{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a conversation by ID.
func (s *Service) Get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	conv, err := s.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIConversation(conv)
	return &result, nil
}

// Create starts a new conversation.
func (s *Service) Create(ctx context.Context, input *models.ConversationCreateRequest) (*models.Conversation, error) {
	var errs []models.FieldError
	if input.UserID == "" {
		errs = append(errs, models.FieldError{Field: "userId", Message: "is required"})
	}
	if len(input.Title) > MaxTitleLength {
		errs = append(errs, models.FieldError{Field: "title", Message: "must be at most 120 characters"})
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	title := input.Title
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now()
	conv := &Conversation{
		ID:        "cnv_" + uuid.New().String()[:22],
		UserID:    input.UserID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}

	result := s.toAPIConversation(conv)
	return &result, nil
}

// Delete deletes a conversation and its messages.
func (s *Service) Delete(ctx context.Context, conversationID string) error {
	if _, err := s.repo.Get(ctx, conversationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, conversationID)
}

// Messages retrieves the messages in a conversation, oldest first.
func (s *Service) Messages(ctx context.Context, conversationID string, limit int) (*models.PagedMessages, error) {
	if _, err := s.repo.Get(ctx, conversationID); err != nil {
		return nil, err
	}

	result, err := s.repo.ListMessages(ctx, conversationID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Message, 0, len(result.Items))
	for _, msg := range result.Items {
		items = append(items, s.toAPIMessage(msg))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedMessages{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Append stores a message and bumps the conversation's updated time.
func (s *Service) Append(ctx context.Context, msg *Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = "msg_" + uuid.New().String()[:22]
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.repo.Touch(ctx, msg.ConversationID); err != nil {
		return nil, err
	}

	result := s.toAPIMessage(msg)
	return &result, nil
}

func (s *Service) toAPIConversation(conv *Conversation) models.Conversation {
	return models.Conversation{
		ID:        conv.ID,
		UserID:    conv.UserID,
		Title:     conv.Title,
		CreatedAt: models.Timestamp(conv.CreatedAt),
		UpdatedAt: models.Timestamp(conv.UpdatedAt),
	}
}

func (s *Service) toAPIMessage(msg *Message) models.Message {
	return models.Message{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           models.MessageRole(msg.Role),
		Content:        msg.Content,
		Provider:       msg.Provider,
		Model:          msg.Model,
		Confidence:     msg.Confidence,
		Emergency:      msg.Emergency,
		Cached:         msg.Cached,
		CreatedAt:      models.Timestamp(msg.CreatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
