package consultation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caremate/caremate/internal/api/models"
	"github.com/caremate/caremate/internal/assistant"
	"github.com/caremate/caremate/internal/consultation"
	"github.com/caremate/caremate/internal/conversation"
	"github.com/caremate/caremate/internal/emergency"
	"github.com/caremate/caremate/internal/safety"
)

type stubGenerator struct {
	calls  int
	result *assistant.GenerationResult
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, _ assistant.GenerationRequest) (*assistant.GenerationResult, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type stubCache struct {
	stored map[string]*assistant.GenerationResult
	gets   int
}

func newStubCache() *stubCache {
	return &stubCache{stored: make(map[string]*assistant.GenerationResult)}
}

func (c *stubCache) Get(_ context.Context, message string) (*assistant.GenerationResult, bool, error) {
	c.gets++
	r, ok := c.stored[message]
	return r, ok, nil
}

func (c *stubCache) Set(_ context.Context, message string, result *assistant.GenerationResult) error {
	c.stored[message] = result
	return nil
}

func newTestService(t *testing.T, gen consultation.Generator, cache consultation.ResponseCache) (*consultation.Service, *conversation.Service, string) {
	t.Helper()

	convs := conversation.NewService(conversation.NewInMemoryRepository())
	conv, err := convs.Create(context.Background(), &models.ConversationCreateRequest{UserID: "usr_1"})
	require.NoError(t, err)

	svc := consultation.NewService(consultation.ServiceConfig{
		Conversations: convs,
		Detector:      emergency.NewDetector(),
		Validator:     safety.NewValidator(),
		Generator:     gen,
		Cache:         cache,
		Logger:        zerolog.Nop(),
	})

	return svc, convs, conv.ID
}

func generated(text string) *assistant.GenerationResult {
	return &assistant.GenerationResult{
		Text:       text,
		Provider:   "openai",
		Kind:       assistant.KindPrimary,
		Model:      "gpt-4o-mini",
		Confidence: 0.9,
	}
}

func TestChat_PersistsBothTurns(t *testing.T) {
	gen := &stubGenerator{result: generated("Rest and drink fluids. Please consult a healthcare professional if symptoms persist.")}
	svc, convs, convID := newTestService(t, gen, nil)

	resp, err := svc.Chat(context.Background(), convID, &models.ChatRequest{
		Message: "I have a mild cough",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, resp.UserMessage.Role)
	assert.Equal(t, models.RoleAssistant, resp.Reply.Role)
	assert.False(t, resp.Emergency)
	require.NotNil(t, resp.Reply.Provider)
	assert.Equal(t, "openai", *resp.Reply.Provider)

	msgs, err := convs.Messages(context.Background(), convID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs.Items, 2)
}

func TestChat_EmergencyShortCircuitsGeneration(t *testing.T) {
	gen := &stubGenerator{result: generated("should never be used")}
	svc, _, convID := newTestService(t, gen, nil)

	resp, err := svc.Chat(context.Background(), convID, &models.ChatRequest{
		Message: "I have severe chest pain",
	})
	require.NoError(t, err)

	assert.True(t, resp.Emergency)
	assert.Equal(t, emergency.EmergencyGuidance, resp.Reply.Content)
	assert.Zero(t, gen.calls, "emergency must bypass the provider fleet")
	assert.Nil(t, resp.Reply.Provider)
}

func TestChat_UrgentPrependsGuidance(t *testing.T) {
	gen := &stubGenerator{result: generated("Keep the area cool. Please consult a healthcare professional.")}
	svc, _, convID := newTestService(t, gen, nil)

	resp, err := svc.Chat(context.Background(), convID, &models.ChatRequest{
		Message: "My child has a high fever since yesterday",
	})
	require.NoError(t, err)

	assert.False(t, resp.Emergency)
	assert.True(t, strings.HasPrefix(resp.Reply.Content, emergency.UrgentGuidance))
	assert.Equal(t, 1, gen.calls, "urgent messages still reach a provider")
}

func TestChat_AppendsDisclaimerWhenMissing(t *testing.T) {
	gen := &stubGenerator{result: generated("Drink plenty of water.")}
	svc, _, convID := newTestService(t, gen, nil)

	resp, err := svc.Chat(context.Background(), convID, &models.ChatRequest{
		Message: "I feel a bit tired lately",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.Reply.Content, safety.Disclaimer)
}

func TestChat_CacheHitSkipsGeneration(t *testing.T) {
	gen := &stubGenerator{result: generated("Answer. Please consult a healthcare professional.")}
	cache := newStubCache()
	svc, _, convID := newTestService(t, gen, cache)

	ctx := context.Background()
	req := &models.ChatRequest{Message: "what helps against hay fever"}

	first, err := svc.Chat(ctx, convID, req)
	require.NoError(t, err)
	assert.False(t, first.Reply.Cached)
	assert.Equal(t, 1, gen.calls)

	second, err := svc.Chat(ctx, convID, req)
	require.NoError(t, err)
	assert.True(t, second.Reply.Cached)
	assert.Equal(t, 1, gen.calls, "second identical question must be served from cache")
}

func TestChat_AllProvidersDown(t *testing.T) {
	gen := &stubGenerator{err: assistant.ErrAllProvidersUnavailable}
	svc, convs, convID := newTestService(t, gen, nil)

	_, err := svc.Chat(context.Background(), convID, &models.ChatRequest{
		Message: "I have a mild cough",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, consultation.ErrAssistantUnavailable)

	// The user turn is kept even though no reply could be produced.
	msgs, err := convs.Messages(context.Background(), convID, 10)
	require.NoError(t, err)
	assert.Len(t, msgs.Items, 1)
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	gen := &stubGenerator{result: generated("unused")}
	svc, _, convID := newTestService(t, gen, nil)

	_, err := svc.Chat(context.Background(), convID, &models.ChatRequest{Message: "   "})

	var vErr *conversation.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Zero(t, gen.calls)
}

func TestChat_UnknownConversation(t *testing.T) {
	gen := &stubGenerator{result: generated("unused")}
	svc, _, _ := newTestService(t, gen, nil)

	_, err := svc.Chat(context.Background(), "cnv_missing", &models.ChatRequest{Message: "hello"})
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)
}
