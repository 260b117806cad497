// Package consultation runs the assistant chat flow: urgency screening,
// cache lookup, AI generation with fallback, safety post-processing, and
// persistence of both turns.
package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/conversation"
	"github.com/caremate/caremate/internal/emergency"
	"github.com/caremate/caremate/internal/safety"
)

// ErrAssistantUnavailable is returned when no provider could produce a
// response. Handlers map it to a calm 503, never to emergency guidance.
var ErrAssistantUnavailable = errors.New("assistant is temporarily unavailable")

// Generator produces one assistant response, trying providers as needed.
type Generator interface {
	Generate(ctx context.Context, req assistant.GenerationRequest) (*assistant.GenerationResult, error)
}

// ResponseCache is an optional read-through cache over generated responses.
type ResponseCache interface {
	Get(ctx context.Context, message string) (*assistant.GenerationResult, bool, error)
	Set(ctx context.Context, message string, result *assistant.GenerationResult) error
}

// ServiceConfig holds the consultation service dependencies.
type ServiceConfig struct {
	Conversations *conversation.Service
	Detector      *emergency.Detector
	Validator     *safety.Validator
	Generator     Generator

	// Cache may be nil; consultations then always hit a provider.
	Cache ResponseCache

	Logger zerolog.Logger
}

// Service orchestrates one chat turn end to end.
type Service struct {
	conversations *conversation.Service
	detector      *emergency.Detector
	validator     *safety.Validator
	generator     Generator
	cache         ResponseCache
	logger        zerolog.Logger
}

// NewService creates a consultation service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		conversations: cfg.Conversations,
		detector:      cfg.Detector,
		validator:     cfg.Validator,
		generator:     cfg.Generator,
		cache:         cfg.Cache,
		logger:        cfg.Logger.With().Str("component", "consultation").Logger(),
	}
}

// Chat handles one user message: it persists the user turn, produces the
// assistant turn, persists it, and returns both. The user turn is stored
// even when generation fails, so the history reflects what was asked.
func (s *Service) Chat(ctx context.Context, conversationID string, input *models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, &conversation.ValidationError{Errors: []models.FieldError{
			{Field: "message", Message: "is required"},
		}}
	}
	if len(message) > conversation.MaxContentLength {
		return nil, &conversation.ValidationError{Errors: []models.FieldError{
			{Field: "message", Message: "must be at most 4000 characters"},
		}}
	}

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	detection := s.detector.Detect(message)

	userMsg, err := s.conversations.Append(ctx, &conversation.Message{
		ConversationID: conv.ID,
		Role:           string(models.RoleUser),
		Content:        message,
		Emergency:      detection.IsEmergency(),
	})
	if err != nil {
		return nil, err
	}

	if detection.IsEmergency() {
		s.logger.Warn().
			Str("conversation_id", conv.ID).
			Strs("matched_terms", detection.MatchedTerms).
			Msg("emergency detected, short-circuiting generation")

		reply, err := s.conversations.Append(ctx, &conversation.Message{
			ConversationID: conv.ID,
			Role:           string(models.RoleAssistant),
			Content:        emergency.EmergencyGuidance,
			Emergency:      true,
		})
		if err != nil {
			return nil, err
		}

		return &models.ChatResponse{
			UserMessage: *userMsg,
			Reply:       *reply,
			Emergency:   true,
		}, nil
	}

	result, cached := s.lookupCache(ctx, message)
	if result == nil {
		result, err = s.generator.Generate(ctx, assistant.GenerationRequest{
			Message: message,
			Context: input.Context,
		})
		if err != nil {
			if errors.Is(err, assistant.ErrAllProvidersUnavailable) ||
				errors.Is(err, assistant.ErrAllProvidersFailed) {
				s.logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("generation exhausted all providers")
				return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
			}
			return nil, err
		}
		s.storeCache(ctx, message, result)
	}

	text := result.Text
	if detection.Level == emergency.LevelUrgent {
		text = emergency.UrgentGuidance + "\n\n" + text
	}

	processed := s.validator.Process(text)
	if processed.Modified {
		s.logger.Info().
			Str("conversation_id", conv.ID).
			Strs("flags", processed.Flags).
			Msg("response rewritten by safety validator")
	}

	provider := result.Provider
	model := result.Model
	confidence := result.Confidence

	reply, err := s.conversations.Append(ctx, &conversation.Message{
		ConversationID: conv.ID,
		Role:           string(models.RoleAssistant),
		Content:        processed.Text,
		Provider:       &provider,
		Model:          &model,
		Confidence:     &confidence,
		Cached:         cached,
	})
	if err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		UserMessage: *userMsg,
		Reply:       *reply,
	}, nil
}

// lookupCache returns a cached result if one exists. Cache errors are
// logged and treated as misses.
func (s *Service) lookupCache(ctx context.Context, message string) (*assistant.GenerationResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	result, hit, err := s.cache.Get(ctx, message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache lookup failed")
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return result, true
}

func (s *Service) storeCache(ctx context.Context, message string, result *assistant.GenerationResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, message, result); err != nil {
		s.logger.Warn().Err(err).Msg("cache store failed")
	}
}
