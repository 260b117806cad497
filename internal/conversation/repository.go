package conversation

import "context"

// ListOptions contains options for listing conversations or messages.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing conversations.
type ListResult struct {
	Items      []*Conversation
	NextCursor string
}

// MessageListResult contains the results of listing messages.
type MessageListResult struct {
	Items      []*Message
	NextCursor string
}

// Repository defines the interface for conversation persistence.
type Repository interface {
	// Get retrieves a conversation by ID.
	Get(ctx context.Context, id string) (*Conversation, error)

	// List retrieves all conversations for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// Create creates a new conversation.
	Create(ctx context.Context, conv *Conversation) error

	// Touch bumps a conversation's updated time.
	Touch(ctx context.Context, id string) error

	// Delete deletes a conversation and its messages.
	Delete(ctx context.Context, id string) error

	// ListMessages retrieves messages in a conversation, oldest first.
	ListMessages(ctx context.Context, conversationID string, opts ListOptions) (*MessageListResult, error)

	// AppendMessage appends a message to a conversation.
	AppendMessage(ctx context.Context, msg *Message) error
}
