package conversation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	convs    map[string]*Conversation
	messages map[string][]*Message
}

// NewInMemoryRepository creates a new in-memory conversation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		convs:    make(map[string]*Conversation),
		messages: make(map[string][]*Message),
	}
}

// Get retrieves a conversation by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, ErrConversationNotFound
	}

	cpy := *conv
	return &cpy, nil
}

// List retrieves all conversations for a user with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var convs []*Conversation
	for _, conv := range r.convs {
		if conv.UserID == userID {
			cpy := *conv
			convs = append(convs, &cpy)
		}
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{Items: convs}
	if len(convs) > limit {
		result.Items = convs[:limit]
		result.NextCursor = convs[limit-1].ID
	}

	return result, nil
}

// Create creates a new conversation.
func (r *InMemoryRepository) Create(_ context.Context, conv *Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *conv
	r.convs[conv.ID] = &cpy
	return nil
}

// Touch bumps a conversation's updated time.
func (r *InMemoryRepository) Touch(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return ErrConversationNotFound
	}
	conv.UpdatedAt = time.Now()
	return nil
}

// Delete deletes a conversation and its messages.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.convs, id)
	delete(r.messages, id)
	return nil
}

// ListMessages retrieves messages in a conversation, oldest first.
func (r *InMemoryRepository) ListMessages(_ context.Context, conversationID string, opts ListOptions) (*MessageListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.messages[conversationID]
	msgs := make([]*Message, 0, len(stored))
	for _, msg := range stored {
		cpy := *msg
		msgs = append(msgs, &cpy)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	result := &MessageListResult{Items: msgs}
	if len(msgs) > limit {
		result.Items = msgs[:limit]
		result.NextCursor = msgs[limit-1].ID
	}

	return result, nil
}

// AppendMessage appends a message to a conversation.
func (r *InMemoryRepository) AppendMessage(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.convs[msg.ConversationID]; !ok {
		return ErrConversationNotFound
	}

	cpy := *msg
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], &cpy)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
