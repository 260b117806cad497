// Package conversation provides conversation and message persistence
// for the assistant chat.
package conversation

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

// Conversation represents a chat thread between a user and the assistant.
type Conversation struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message represents one turn in a conversation. Assistant turns carry
// the provider that produced them; user turns leave those fields nil.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	Provider       *string
	Model          *string
	Confidence     *float64
	Emergency      bool
	Cached         bool
	CreatedAt      time.Time
}
